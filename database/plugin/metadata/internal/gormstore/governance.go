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

package gormstore

import (
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/keys"
)

// GetSequenceCounter returns the sequence counter, or nil if it has not been created
func (s *Store) GetSequenceCounter(
	txn types.Txn,
) (*models.SequenceCounter, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.SequenceCounter
	found, err := first(db, &ret, "id = ?", models.SingletonID)
	if err != nil || !found {
		return nil, err
	}
	return &ret, nil
}

// CreateSequenceCounter inserts the sequence counter. It returns false if the
// counter already exists.
func (s *Store) CreateSequenceCounter(
	counter *models.SequenceCounter,
	txn types.Txn,
) (bool, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return false, err
	}
	counter.ID = models.SingletonID
	return createIfAbsent(db, counter)
}

// SetSequenceCounter saves the sequence counter
func (s *Store) SetSequenceCounter(
	counter *models.SequenceCounter,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	counter.ID = models.SingletonID
	return db.Save(counter).Error
}

// GetProposal returns a proposal by identifier, or nil if not found
func (s *Store) GetProposal(
	proposalID uint64,
	txn types.Txn,
) (*models.Proposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.Proposal
	found, err := first(db, &ret, "proposal_id = ?", types.Uint64(proposalID))
	if err != nil || !found {
		return nil, err
	}
	return &ret, nil
}

// GetProposals returns all proposals in creation order
func (s *Store) GetProposals(txn types.Txn) ([]models.Proposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Proposal
	if result := db.Order("id ASC").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// CreateProposal inserts a new proposal
func (s *Store) CreateProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(proposal).Error
}

// SetProposal saves changes to an existing proposal
func (s *Store) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(proposal).Error
}

// GetVoteRecord returns the vote record for a proposal and voter, or nil
func (s *Store) GetVoteRecord(
	proposalID uint64,
	voter keys.Key,
	txn types.Txn,
) (*models.VoteRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.VoteRecord
	found, err := first(
		db,
		&ret,
		"proposal_id = ? AND voter = ?",
		types.Uint64(proposalID),
		voter,
	)
	if err != nil || !found {
		return nil, err
	}
	return &ret, nil
}

// CreateVoteRecord inserts a vote record. It returns false if the voter has
// already voted on the proposal.
func (s *Store) CreateVoteRecord(
	record *models.VoteRecord,
	txn types.Txn,
) (bool, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return false, err
	}
	return createIfAbsent(db, record)
}

// CountVoteRecords returns the number of vote records for a proposal
func (s *Store) CountVoteRecords(
	proposalID uint64,
	txn types.Txn,
) (uint64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	result := db.Model(&models.VoteRecord{}).
		Where("proposal_id = ?", types.Uint64(proposalID)).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil // #nosec G115
}
