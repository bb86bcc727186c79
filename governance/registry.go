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

package governance

import (
	"fmt"

	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/keys"
)

// VoterRegistry tracks which voters have voted on which proposals
type VoterRegistry struct {
	db *database.Database
}

func NewVoterRegistry(db *database.Database) *VoterRegistry {
	return &VoterRegistry{db: db}
}

func (r *VoterRegistry) HasVoted(
	proposalID uint64,
	voter keys.Key,
	txn *database.Txn,
) (bool, error) {
	return r.db.HasVoteRecord(proposalID, voter, txn)
}

// RecordVote inserts the vote record unless one already exists for the
// proposal and voter, in which case it fails with VoterAlreadyVoted. The
// check and the insert are a single statement.
func (r *VoterRegistry) RecordVote(
	proposalID uint64,
	voter keys.Key,
	castAt int64,
	txn *database.Txn,
) error {
	created, err := r.db.CreateVoteRecord(
		&models.VoteRecord{
			ProposalID: types.Uint64(proposalID),
			Voter:      voter,
			CastAt:     castAt,
		},
		txn,
	)
	if err != nil {
		return fmt.Errorf("create vote record: %w", err)
	}
	if !created {
		return failure.ErrVoterAlreadyVoted
	}
	return nil
}
