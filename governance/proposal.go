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
	"context"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/internal/checked"
	"github.com/blinklabs-io/votevault/keys"
	"go.opentelemetry.io/otel/attribute"
)

type Status uint8

const (
	StatusActive Status = Status(models.ProposalStatusActive)
	StatusEnded  Status = Status(models.ProposalStatusEnded)
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(data []byte) error {
	switch string(data) {
	case "active":
		*s = StatusActive
	case "ended":
		*s = StatusEnded
	default:
		return fmt.Errorf("unknown proposal status: %q", data)
	}
	return nil
}

type Proposal struct {
	ID        uint64   `json:"id"`
	Authority keys.Key `json:"authority"`
	Deadline  int64    `json:"deadline"`
	VoteCount uint64   `json:"vote_count"`
	Status    Status   `json:"status"`
	CreatedAt int64    `json:"created_at"`
	EndedAt   *int64   `json:"ended_at,omitempty"`
}

func proposalFromModel(p *models.Proposal) Proposal {
	return Proposal{
		ID:        uint64(p.ProposalID),
		Authority: p.Authority,
		Deadline:  p.Deadline,
		VoteCount: uint64(p.VoteCount),
		Status:    Status(p.Status),
		CreatedAt: p.CreatedAt,
		EndedAt:   p.EndedAt,
	}
}

// InitializeCounter creates the proposal sequence counter. It fails with
// AlreadyInitialized if the counter exists.
func (g *Governance) InitializeCounter(
	ctx context.Context,
	caller auth.Caller,
) (err error) {
	ctx, done := g.ops.Start(ctx, "initialize_counter", caller)
	defer func() { done(err) }()
	if err := auth.RequireVerified(caller); err != nil {
		return err
	}
	txn := g.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		if err := g.counter.Initialize(txn); err != nil {
			return err
		}
		return g.journal(txn, "initialize_counter", caller, nil)
	})
	if err != nil {
		return err
	}
	g.logger.Info(
		"proposal counter initialized",
		"component", "governance",
		"caller", caller.String(),
	)
	return nil
}

// CreateProposal opens a proposal owned by the caller. The deadline is a unix
// timestamp in seconds and must be in the future.
func (g *Governance) CreateProposal(
	ctx context.Context,
	caller auth.Caller,
	deadline int64,
) (id uint64, err error) {
	ctx, done := g.ops.Start(
		ctx,
		"create_proposal",
		caller,
		attribute.Int64("votevault.deadline", deadline),
	)
	defer func() { done(err) }()
	if err := auth.RequireVerified(caller); err != nil {
		return 0, err
	}
	var proposal *models.Proposal
	txn := g.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		now := g.clock.Now().Unix()
		if deadline <= now {
			return failure.ErrInvalidDeadline
		}
		newID, err := g.counter.Allocate(txn)
		if err != nil {
			return err
		}
		proposal = &models.Proposal{
			ProposalID: types.Uint64(newID),
			Authority:  caller.Key(),
			Deadline:   deadline,
			VoteCount:  0,
			Status:     models.ProposalStatusActive,
			CreatedAt:  now,
		}
		if err := g.db.CreateProposal(proposal, txn); err != nil {
			return fmt.Errorf("create proposal: %w", err)
		}
		return g.journal(
			txn,
			"create_proposal",
			caller,
			map[string]string{
				"proposal_id": strconv.FormatUint(newID, 10),
				"deadline":    strconv.FormatInt(deadline, 10),
			},
		)
	})
	if err != nil {
		return 0, err
	}
	id = uint64(proposal.ProposalID)
	if g.metrics != nil {
		g.metrics.proposalsCreated.Inc()
	}
	g.logger.Info(
		"proposal created",
		"component", "governance",
		"proposal_id", id,
		"authority", caller.String(),
		"deadline", deadline,
	)
	g.publish(
		ProposalCreatedEventType,
		ProposalCreatedEvent{
			ProposalID: id,
			Authority:  caller.Key(),
			Deadline:   deadline,
		},
	)
	return id, nil
}

// CastVote records the caller's vote on an active proposal
func (g *Governance) CastVote(
	ctx context.Context,
	caller auth.Caller,
	proposalID uint64,
) (err error) {
	ctx, done := g.ops.Start(
		ctx,
		"cast_vote",
		caller,
		attribute.Int64("votevault.proposal_id", int64(proposalID)),
	)
	defer func() { done(err) }()
	if err := auth.RequireVerified(caller); err != nil {
		return err
	}
	voter := caller.Key()
	var voteCount uint64
	txn := g.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		now := g.clock.Now().Unix()
		tmpProposal, err := g.proposalModel(proposalID, txn)
		if err != nil {
			return err
		}
		if tmpProposal.Status != models.ProposalStatusActive ||
			now >= tmpProposal.Deadline {
			return failure.ErrProposalEnded
		}
		voted, err := g.registry.HasVoted(proposalID, voter, txn)
		if err != nil {
			return err
		}
		if voted {
			return failure.ErrVoterAlreadyVoted
		}
		newCount, ok := checked.Add(uint64(tmpProposal.VoteCount), 1)
		if !ok {
			return failure.ErrProposalVotesOverflow
		}
		if err := g.registry.RecordVote(proposalID, voter, now, txn); err != nil {
			return err
		}
		tmpProposal.VoteCount = types.Uint64(newCount)
		if err := g.db.SetProposal(tmpProposal, txn); err != nil {
			return fmt.Errorf("update proposal: %w", err)
		}
		voteCount = newCount
		return g.journal(
			txn,
			"cast_vote",
			caller,
			map[string]string{
				"proposal_id": strconv.FormatUint(proposalID, 10),
				"voter":       voter.String(),
			},
		)
	})
	if err != nil {
		return err
	}
	if g.metrics != nil {
		g.metrics.votesCast.Inc()
	}
	g.logger.Info(
		"vote cast",
		"component", "governance",
		"proposal_id", proposalID,
		"voter", voter.String(),
		"vote_count", voteCount,
	)
	g.publish(
		VoteCastEventType,
		VoteCastEvent{
			ProposalID: proposalID,
			Voter:      voter,
			VoteCount:  voteCount,
		},
	)
	return nil
}

// DeclareWinner ends a proposal whose deadline has passed and returns the
// final tally. Only the proposal authority or an administrator may declare.
func (g *Governance) DeclareWinner(
	ctx context.Context,
	caller auth.Caller,
	proposalID uint64,
) (tally uint64, err error) {
	ctx, done := g.ops.Start(
		ctx,
		"declare_winner",
		caller,
		attribute.Int64("votevault.proposal_id", int64(proposalID)),
	)
	defer func() { done(err) }()
	txn := g.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		now := g.clock.Now().Unix()
		tmpProposal, err := g.proposalModel(proposalID, txn)
		if err != nil {
			return err
		}
		if tmpProposal.Status == models.ProposalStatusEnded {
			return failure.ErrProposalEnded
		}
		if now < tmpProposal.Deadline {
			return failure.ErrVotingStillActive
		}
		if tmpProposal.VoteCount == 0 {
			return failure.ErrNoVotesCast
		}
		if !g.isAdministrator(caller) {
			if err := auth.Require(caller, tmpProposal.Authority); err != nil {
				return err
			}
		}
		tmpProposal.Status = models.ProposalStatusEnded
		tmpProposal.EndedAt = &now
		if err := g.db.SetProposal(tmpProposal, txn); err != nil {
			return fmt.Errorf("update proposal: %w", err)
		}
		tally = uint64(tmpProposal.VoteCount)
		return g.journal(
			txn,
			"declare_winner",
			caller,
			map[string]string{
				"proposal_id": strconv.FormatUint(proposalID, 10),
				"vote_count":  strconv.FormatUint(tally, 10),
			},
		)
	})
	if err != nil {
		return 0, err
	}
	if g.metrics != nil {
		g.metrics.winnersDeclared.Inc()
	}
	g.logger.Info(
		"proposal ended",
		"component", "governance",
		"proposal_id", proposalID,
		"vote_count", tally,
		"declared_by", caller.String(),
	)
	g.publish(
		ProposalEndedEventType,
		ProposalEndedEvent{
			ProposalID: proposalID,
			VoteCount:  tally,
			DeclaredBy: caller.Key(),
		},
	)
	return tally, nil
}
