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
	"github.com/blinklabs-io/votevault/event"
	"github.com/blinklabs-io/votevault/keys"
)

const (
	ProposalCreatedEventType event.EventType = "governance.proposal"
	VoteCastEventType        event.EventType = "governance.vote"
	ProposalEndedEventType   event.EventType = "governance.ended"
)

type ProposalCreatedEvent struct {
	ProposalID uint64
	Authority  keys.Key
	Deadline   int64
}

type VoteCastEvent struct {
	ProposalID uint64
	Voter      keys.Key
	VoteCount  uint64
}

type ProposalEndedEvent struct {
	ProposalID uint64
	VoteCount  uint64
	DeclaredBy keys.Key
}
