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

package governance_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/event"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/governance"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNow = 1_700_000_000

type testEnv struct {
	gov   *governance.Governance
	db    *database.Database
	clock *clock.Mock
	bus   *event.EventBus
	reg   *prometheus.Registry
	admin auth.Caller
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mockClock := clock.NewMock()
	mockClock.Set(time.Unix(testNow, 0))
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	reg := prometheus.NewRegistry()
	admin := auth.Verified(keys.New())
	gov, err := governance.New(governance.Config{
		Database:       db,
		EventBus:       bus,
		Clock:          mockClock,
		PromRegistry:   reg,
		Administrators: []keys.Key{admin.Key()},
	})
	require.NoError(t, err)
	return &testEnv{
		gov:   gov,
		db:    db,
		clock: mockClock,
		bus:   bus,
		reg:   reg,
		admin: admin,
	}
}

func newCaller() auth.Caller {
	return auth.Verified(keys.New())
}

func (e *testEnv) initCounter(t *testing.T) {
	t.Helper()
	require.NoError(t, e.gov.InitializeCounter(context.Background(), newCaller()))
}

func TestNewRequiresDatabase(t *testing.T) {
	_, err := governance.New(governance.Config{})
	require.Error(t, err)
}

func TestInitializeCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.gov.Counter(ctx)
	require.ErrorIs(t, err, failure.ErrNotInitialized)

	require.NoError(t, env.gov.InitializeCounter(ctx, newCaller()))
	next, err := env.gov.Counter(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), next)

	err = env.gov.InitializeCounter(ctx, newCaller())
	require.ErrorIs(t, err, failure.ErrAlreadyInitialized)

	err = env.gov.InitializeCounter(ctx, auth.Anonymous)
	require.ErrorIs(t, err, failure.ErrUnauthorizedAccess)
}

func TestCreateProposalNotInitialized(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.gov.CreateProposal(
		context.Background(),
		newCaller(),
		testNow+3600,
	)
	require.ErrorIs(t, err, failure.ErrNotInitialized)
}

func TestCreateProposalInvalidDeadline(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	for _, deadline := range []int64{0, testNow - 1, testNow} {
		_, err := env.gov.CreateProposal(ctx, newCaller(), deadline)
		require.ErrorIs(t, err, failure.ErrInvalidDeadline, "deadline %d", deadline)
	}
	// Rejected calls do not consume identifiers
	next, err := env.gov.Counter(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), next)
}

func TestCreateProposalAnonymous(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	_, err := env.gov.CreateProposal(
		context.Background(),
		auth.Anonymous,
		testNow+3600,
	)
	require.ErrorIs(t, err, failure.ErrUnauthorizedAccess)
}

func TestCreateProposalIdsIncrease(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	authority := newCaller()
	for i := range 5 {
		id, err := env.gov.CreateProposal(ctx, authority, testNow+60)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), id)
	}
	next, err := env.gov.Counter(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), next)

	proposal, err := env.gov.Proposal(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, authority.Key(), proposal.Authority)
	assert.Equal(t, int64(testNow+60), proposal.Deadline)
	assert.Equal(t, uint64(0), proposal.VoteCount)
	assert.Equal(t, governance.StatusActive, proposal.Status)
	assert.Equal(t, int64(testNow), proposal.CreatedAt)
	assert.Nil(t, proposal.EndedAt)

	proposals, err := env.gov.Proposals(ctx)
	require.NoError(t, err)
	require.Len(t, proposals, 5)
	for i, p := range proposals {
		assert.Equal(t, uint64(i), p.ID)
	}
}

func TestCounterOverflow(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	require.NoError(t, env.db.SetSequenceCounter(
		&models.SequenceCounter{NextID: math.MaxUint64 - 1},
		nil,
	))

	id, err := env.gov.CreateProposal(ctx, newCaller(), testNow+60)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64-1), id)

	_, err = env.gov.CreateProposal(ctx, newCaller(), testNow+60)
	require.ErrorIs(t, err, failure.ErrCounterOverflow)

	next, err := env.gov.Counter(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), next)
	proposals, err := env.gov.Proposals(ctx)
	require.NoError(t, err)
	assert.Len(t, proposals, 1)
}

func TestVotingScenario(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	authority := newCaller()
	voter1 := newCaller()
	voter2 := newCaller()

	id, err := env.gov.CreateProposal(ctx, authority, testNow+3600)
	require.NoError(t, err)
	require.Equal(t, uint64(0), id)

	require.NoError(t, env.gov.CastVote(ctx, voter1, id))
	require.NoError(t, env.gov.CastVote(ctx, voter2, id))

	err = env.gov.CastVote(ctx, voter1, id)
	require.ErrorIs(t, err, failure.ErrVoterAlreadyVoted)

	proposal, err := env.gov.Proposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), proposal.VoteCount)
	voted, err := env.gov.HasVoted(ctx, id, voter1.Key())
	require.NoError(t, err)
	assert.True(t, voted)
	voted, err = env.gov.HasVoted(ctx, id, authority.Key())
	require.NoError(t, err)
	assert.False(t, voted)

	_, err = env.gov.DeclareWinner(ctx, authority, id)
	require.ErrorIs(t, err, failure.ErrVotingStillActive)

	env.clock.Add(3600 * time.Second)

	err = env.gov.CastVote(ctx, newCaller(), id)
	require.ErrorIs(t, err, failure.ErrProposalEnded)

	_, err = env.gov.DeclareWinner(ctx, voter1, id)
	require.ErrorIs(t, err, failure.ErrUnauthorizedAccess)

	tally, err := env.gov.DeclareWinner(ctx, authority, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), tally)

	_, err = env.gov.DeclareWinner(ctx, authority, id)
	require.ErrorIs(t, err, failure.ErrProposalEnded)

	proposal, err = env.gov.Proposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, governance.StatusEnded, proposal.Status)
	assert.Equal(t, uint64(2), proposal.VoteCount)
	require.NotNil(t, proposal.EndedAt)
	assert.Equal(t, int64(testNow+3600), *proposal.EndedAt)

	count, err := env.db.CountVoteRecords(id, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestCastVoteProposalNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	err := env.gov.CastVote(context.Background(), newCaller(), 42)
	require.ErrorIs(t, err, failure.ErrProposalNotFound)
	_, err = env.gov.Proposal(context.Background(), 42)
	require.ErrorIs(t, err, failure.ErrProposalNotFound)
	_, err = env.gov.DeclareWinner(context.Background(), env.admin, 42)
	require.ErrorIs(t, err, failure.ErrProposalNotFound)
}

func TestCastVoteAfterDeadlineKeepsTally(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	id, err := env.gov.CreateProposal(ctx, newCaller(), testNow+10)
	require.NoError(t, err)
	require.NoError(t, env.gov.CastVote(ctx, newCaller(), id))

	env.clock.Add(10 * time.Second)
	voter := newCaller()
	err = env.gov.CastVote(ctx, voter, id)
	require.ErrorIs(t, err, failure.ErrProposalEnded)

	proposal, err := env.gov.Proposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposal.VoteCount)
	voted, err := env.gov.HasVoted(ctx, id, voter.Key())
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestProposalVotesOverflow(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	id, err := env.gov.CreateProposal(ctx, newCaller(), testNow+60)
	require.NoError(t, err)

	tmpProposal, err := env.db.GetProposal(id, nil)
	require.NoError(t, err)
	tmpProposal.VoteCount = types.Uint64(math.MaxUint64)
	require.NoError(t, env.db.SetProposal(tmpProposal, nil))

	voter := newCaller()
	err = env.gov.CastVote(ctx, voter, id)
	require.ErrorIs(t, err, failure.ErrProposalVotesOverflow)

	voted, err := env.gov.HasVoted(ctx, id, voter.Key())
	require.NoError(t, err)
	assert.False(t, voted, "rejected vote must not leave a record")
}

func TestDeclareWinnerNoVotes(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	authority := newCaller()
	id, err := env.gov.CreateProposal(ctx, authority, testNow+60)
	require.NoError(t, err)
	env.clock.Add(time.Minute)
	_, err = env.gov.DeclareWinner(ctx, authority, id)
	require.ErrorIs(t, err, failure.ErrNoVotesCast)
	proposal, err := env.gov.Proposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, governance.StatusActive, proposal.Status)
}

func TestDeclareWinnerAdministrator(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	id, err := env.gov.CreateProposal(ctx, newCaller(), testNow+60)
	require.NoError(t, err)
	require.NoError(t, env.gov.CastVote(ctx, newCaller(), id))
	env.clock.Add(time.Minute)

	_, err = env.gov.DeclareWinner(ctx, auth.Anonymous, id)
	require.ErrorIs(t, err, failure.ErrUnauthorizedAccess)

	tally, err := env.gov.DeclareWinner(ctx, env.admin, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tally)
}

func TestConcurrentVotesSameVoter(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	id, err := env.gov.CreateProposal(ctx, newCaller(), testNow+60)
	require.NoError(t, err)

	voter := newCaller()
	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = env.gov.CastVote(ctx, voter, id)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, failure.ErrVoterAlreadyVoted)
	}
	assert.Equal(t, 1, succeeded)
	proposal, err := env.gov.Proposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposal.VoteCount)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	_, createdCh := env.bus.Subscribe(governance.ProposalCreatedEventType)
	_, voteCh := env.bus.Subscribe(governance.VoteCastEventType)
	_, endedCh := env.bus.Subscribe(governance.ProposalEndedEventType)

	authority := newCaller()
	voter := newCaller()
	id, err := env.gov.CreateProposal(ctx, authority, testNow+60)
	require.NoError(t, err)
	require.NoError(t, env.gov.CastVote(ctx, voter, id))
	require.Error(t, env.gov.CastVote(ctx, voter, id))
	env.clock.Add(time.Minute)
	_, err = env.gov.DeclareWinner(ctx, authority, id)
	require.NoError(t, err)

	evt := <-createdCh
	assert.Equal(t, governance.ProposalCreatedEvent{
		ProposalID: id,
		Authority:  authority.Key(),
		Deadline:   testNow + 60,
	}, evt.Data)
	evt = <-voteCh
	assert.Equal(t, governance.VoteCastEvent{
		ProposalID: id,
		Voter:      voter.Key(),
		VoteCount:  1,
	}, evt.Data)
	evt = <-endedCh
	assert.Equal(t, governance.ProposalEndedEvent{
		ProposalID: id,
		VoteCount:  1,
		DeclaredBy: authority.Key(),
	}, evt.Data)

	// The rejected second vote published nothing
	select {
	case evt := <-voteCh:
		t.Fatalf("unexpected event: %#v", evt.Data)
	default:
	}
}

func TestJournal(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	authority := newCaller()
	id, err := env.gov.CreateProposal(ctx, authority, testNow+60)
	require.NoError(t, err)
	_, err = env.gov.CreateProposal(ctx, authority, testNow-60)
	require.Error(t, err)
	require.NoError(t, env.gov.CastVote(ctx, newCaller(), id))

	entries, err := env.db.GetJournal(1, 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	ops := []string{}
	for _, entry := range entries {
		ops = append(ops, entry.Operation)
	}
	assert.Equal(
		t,
		[]string{"initialize_counter", "create_proposal", "cast_vote"},
		ops,
	)
	assert.Equal(t, authority.Key().String(), entries[1].Caller)
	assert.Equal(t, "0", entries[1].Fields["proposal_id"])
	assert.Equal(t, int64(testNow), entries[1].Timestamp)
	assert.Equal(t, uint64(3), entries[2].Sequence)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.initCounter(t)
	ctx := context.Background()
	_, err := env.gov.CreateProposal(ctx, newCaller(), testNow)
	require.ErrorIs(t, err, failure.ErrInvalidDeadline)
	_, err = env.gov.CreateProposal(ctx, newCaller(), testNow+1)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(
		env.reg,
		"votevault_governance_proposals_created_total",
		"votevault_governance_rejected_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
