// Copyright 2026 Blink Labs Software
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

package models

import (
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/keys"
)

// VoteRecord marks that a voter has voted on a proposal. The unique index on
// (proposal, voter) is what makes a second vote impossible.
type VoteRecord struct {
	ID         uint         `gorm:"primarykey"`
	ProposalID types.Uint64 `gorm:"type:varchar(20);uniqueIndex:idx_vote_record_unique,priority:1;not null"`
	Voter      keys.Key     `gorm:"uniqueIndex:idx_vote_record_unique,priority:2;size:32;not null"`
	CastAt     int64        `gorm:"not null"`
}

func (VoteRecord) TableName() string {
	return "vote_record"
}
