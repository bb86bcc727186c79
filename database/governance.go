// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/keys"
)

// GetSequenceCounter returns the proposal sequence counter
func (d *Database) GetSequenceCounter(
	txn *Txn,
) (*models.SequenceCounter, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	counter, err := d.metadata.GetSequenceCounter(txn.Metadata())
	if err != nil {
		return nil, err
	}
	if counter == nil {
		return nil, models.ErrSequenceCounterNotFound
	}
	return counter, nil
}

// CreateSequenceCounter creates the sequence counter. It returns false if the
// counter already exists.
func (d *Database) CreateSequenceCounter(
	counter *models.SequenceCounter,
	txn *Txn,
) (bool, error) {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Release()
	}
	created, err := d.metadata.CreateSequenceCounter(counter, txn.Metadata())
	if err != nil {
		return false, err
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return false, err
		}
	}
	return created, nil
}

// SetSequenceCounter saves the sequence counter
func (d *Database) SetSequenceCounter(
	counter *models.SequenceCounter,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.SetSequenceCounter(counter, txn.Metadata())
		})
	}
	return d.metadata.SetSequenceCounter(counter, txn.Metadata())
}

// GetProposal returns a proposal by identifier
func (d *Database) GetProposal(
	proposalID uint64,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	proposal, err := d.metadata.GetProposal(proposalID, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	return proposal, nil
}

// GetProposals returns all proposals in creation order
func (d *Database) GetProposals(txn *Txn) ([]models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetProposals(txn.Metadata())
}

// CreateProposal inserts a new proposal
func (d *Database) CreateProposal(
	proposal *models.Proposal,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.CreateProposal(proposal, txn.Metadata())
		})
	}
	return d.metadata.CreateProposal(proposal, txn.Metadata())
}

// SetProposal saves changes to a proposal
func (d *Database) SetProposal(
	proposal *models.Proposal,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.SetProposal(proposal, txn.Metadata())
		})
	}
	return d.metadata.SetProposal(proposal, txn.Metadata())
}

// HasVoteRecord reports whether a voter has voted on a proposal
func (d *Database) HasVoteRecord(
	proposalID uint64,
	voter keys.Key,
	txn *Txn,
) (bool, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	record, err := d.metadata.GetVoteRecord(proposalID, voter, txn.Metadata())
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

// CreateVoteRecord inserts a vote record if none exists for the proposal and
// voter. It returns false when the voter has already voted.
func (d *Database) CreateVoteRecord(
	record *models.VoteRecord,
	txn *Txn,
) (bool, error) {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Release()
	}
	created, err := d.metadata.CreateVoteRecord(record, txn.Metadata())
	if err != nil {
		return false, err
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return false, err
		}
	}
	return created, nil
}

// CountVoteRecords returns the number of votes recorded for a proposal
func (d *Database) CountVoteRecords(
	proposalID uint64,
	txn *Txn,
) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.CountVoteRecords(proposalID, txn.Metadata())
}
