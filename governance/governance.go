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

// Package governance runs proposal voting: it allocates proposal
// identifiers, records votes at most once per voter and declares the
// result once the deadline has passed.
package governance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/event"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/internal/operation"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/prometheus/client_golang/prometheus"
)

const tracerName = "github.com/blinklabs-io/votevault/governance"

type Config struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Clock        clock.Clock
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// Administrators may declare the result of any proposal
	Administrators []keys.Key
}

type Governance struct {
	config   Config
	db       *database.Database
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *governanceMetrics
	ops      *operation.Recorder
	counter  *SequenceAllocator
	registry *VoterRegistry
}

func New(cfg Config) (*Governance, error) {
	if cfg.Database == nil {
		return nil, errors.New("governance: database is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	g := &Governance{
		config:   cfg,
		db:       cfg.Database,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		counter:  NewSequenceAllocator(cfg.Database),
		registry: NewVoterRegistry(cfg.Database),
	}
	if cfg.PromRegistry != nil {
		g.metrics = &governanceMetrics{}
		g.metrics.init(cfg.PromRegistry)
	}
	var rejected *prometheus.CounterVec
	if g.metrics != nil {
		rejected = g.metrics.rejected
	}
	g.ops = operation.NewRecorder("governance", tracerName, g.logger, rejected)
	return g, nil
}

// Counter returns the next proposal identifier that will be allocated
func (g *Governance) Counter(ctx context.Context) (uint64, error) {
	txn := g.db.TransactionContext(ctx, false)
	defer txn.Release()
	return g.counter.Peek(txn)
}

// Proposal returns a proposal by identifier
func (g *Governance) Proposal(ctx context.Context, id uint64) (*Proposal, error) {
	txn := g.db.TransactionContext(ctx, false)
	defer txn.Release()
	tmpProposal, err := g.proposalModel(id, txn)
	if err != nil {
		return nil, err
	}
	ret := proposalFromModel(tmpProposal)
	return &ret, nil
}

// Proposals returns every proposal in identifier order
func (g *Governance) Proposals(ctx context.Context) ([]Proposal, error) {
	txn := g.db.TransactionContext(ctx, false)
	defer txn.Release()
	tmpProposals, err := g.db.GetProposals(txn)
	if err != nil {
		return nil, err
	}
	ret := make([]Proposal, 0, len(tmpProposals))
	for i := range tmpProposals {
		ret = append(ret, proposalFromModel(&tmpProposals[i]))
	}
	return ret, nil
}

// HasVoted reports whether the voter has voted on the proposal
func (g *Governance) HasVoted(
	ctx context.Context,
	proposalID uint64,
	voter keys.Key,
) (bool, error) {
	txn := g.db.TransactionContext(ctx, false)
	defer txn.Release()
	return g.registry.HasVoted(proposalID, voter, txn)
}

// proposalModel loads a proposal record, failing with ProposalNotFound when
// it does not exist
func (g *Governance) proposalModel(
	id uint64,
	txn *database.Txn,
) (*models.Proposal, error) {
	tmpProposal, err := g.db.GetProposal(id, txn)
	if err != nil {
		if errors.Is(err, models.ErrProposalNotFound) {
			return nil, failure.New(
				failure.ProposalNotFound,
				"proposal "+strconv.FormatUint(id, 10)+" not found",
			)
		}
		return nil, err
	}
	return tmpProposal, nil
}

func (g *Governance) isAdministrator(caller auth.Caller) bool {
	for _, admin := range g.config.Administrators {
		if caller.Is(admin) {
			return true
		}
	}
	return false
}

func (g *Governance) journal(
	txn *database.Txn,
	op string,
	caller auth.Caller,
	fields map[string]string,
) error {
	return g.db.AppendJournal(
		&database.JournalEntry{
			Operation: op,
			Caller:    caller.String(),
			Timestamp: g.clock.Now().Unix(),
			Fields:    fields,
		},
		txn,
	)
}

func (g *Governance) publish(evtType event.EventType, data any) {
	if g.config.EventBus == nil {
		return
	}
	g.config.EventBus.Publish(evtType, event.NewEvent(evtType, data))
}
