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
	"errors"

	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/keys"
)

var ErrProposalNotFound = errors.New("proposal not found")

// Proposal status values
const (
	ProposalStatusActive uint8 = 0
	ProposalStatusEnded  uint8 = 1
)

// Proposal is a single yes-count vote with a deadline. ProposalID is the
// identifier issued by the sequence counter; ID is only the row key.
type Proposal struct {
	ID         uint         `gorm:"primarykey"`
	ProposalID types.Uint64 `gorm:"type:varchar(20);uniqueIndex;not null"`
	Authority  keys.Key     `gorm:"index;size:32;not null"`
	Deadline   int64        `gorm:"index;not null"`
	VoteCount  types.Uint64 `gorm:"type:varchar(20);not null"`
	Status     uint8        `gorm:"index;not null"`
	CreatedAt  int64        `gorm:"autoCreateTime:false;not null"`
	EndedAt    *int64
}

func (Proposal) TableName() string {
	return "proposal"
}
