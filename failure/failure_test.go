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

package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blinklabs-io/votevault/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	detailed := failure.New(
		failure.ProposalEnded,
		"proposal 7 ended at 1700000000",
	)
	assert.ErrorIs(t, detailed, failure.ErrProposalEnded)
	assert.NotErrorIs(t, detailed, failure.ErrVotingStillActive)
	assert.Equal(t, "proposal 7 ended at 1700000000", detailed.Error())
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("cast vote: %w", failure.ErrVoterAlreadyVoted)
	code, ok := failure.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, failure.VoterAlreadyVoted, code)

	_, ok = failure.CodeOf(errors.New("disk full"))
	assert.False(t, ok)
}

func TestCodesUnique(t *testing.T) {
	seen := make(map[failure.Code]bool)
	for _, code := range failure.Codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Len(t, seen, 17)
}

func TestEmptyMessageFallsBackToCode(t *testing.T) {
	err := &failure.Error{Code: failure.InvalidMint}
	assert.Equal(t, "InvalidMint", err.Error())
}
