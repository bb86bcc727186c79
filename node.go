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

// Package votevault wires the governance and treasury programs to their
// storage, event bus and REST API.
package votevault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/votevault/api"
	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/event"
	"github.com/blinklabs-io/votevault/governance"
	"github.com/blinklabs-io/votevault/treasury"
)

type Node struct {
	db            *database.Database
	eventBus      *event.EventBus
	governance    *governance.Governance
	treasury      *treasury.Treasury
	api           *api.Server
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	started       chan struct{}
	openOnce      sync.Once
	openErr       error
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		done:     make(chan struct{}),
		started:  make(chan struct{}),
	}
	return n, nil
}

// Open loads the database and builds the services without starting the
// API. Administrative commands use it to run a single operation.
func (n *Node) Open() error {
	n.openOnce.Do(func() {
		n.openErr = n.open()
	})
	return n.openErr
}

func (n *Node) open() error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		var tsErr database.CommitTimestampError
		if errors.As(err, &tsErr) {
			return fmt.Errorf("database is inconsistent, restore from backup: %w", err)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	n.shutdownFuncs = append(n.shutdownFuncs, func(context.Context) error {
		return n.db.Close()
	})
	gov, err := governance.New(governance.Config{
		Database:       n.db,
		EventBus:       n.eventBus,
		Clock:          n.config.clock,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		Administrators: n.config.administrators,
	})
	if err != nil {
		return fmt.Errorf("failed to load governance: %w", err)
	}
	n.governance = gov
	tr, err := treasury.New(treasury.Config{
		Database:     n.db,
		EventBus:     n.eventBus,
		Clock:        n.config.clock,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
		ProgramID:    n.config.programID,
	})
	if err != nil {
		return fmt.Errorf("failed to load treasury: %w", err)
	}
	n.treasury = tr
	return nil
}

// Run opens the node, starts the REST API when configured and blocks until
// the context is cancelled or Stop is called
func (n *Node) Run(ctx context.Context) error {
	if err := n.Open(); err != nil {
		return err
	}
	n.eventBus.SubscribeFunc(governance.ProposalEndedEventType, n.logEvent)
	n.eventBus.SubscribeFunc(treasury.PurchaseEventType, n.logEvent)
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.Config{
				ListenAddress: n.config.apiListenAddress,
				Identity:      n.config.identity,
			},
			n.db,
			n.governance,
			n.treasury,
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API: %w", err)
		}
	}
	n.config.logger.Info(
		"node started",
		"component", "node",
		"program_id", n.config.programID.String(),
		"treasury_config", n.treasury.ConfigKey().String(),
	)
	close(n.started)

	// Wait for shutdown
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

func (n *Node) logEvent(evt event.Event) {
	n.config.logger.Debug(
		fmt.Sprintf("event: %+v", evt.Data),
		"component", "node",
		"type", evt.Type,
	)
}

// Governance returns the governance program. It is nil until Open succeeds.
func (n *Node) Governance() *governance.Governance {
	return n.governance
}

// Treasury returns the treasury program. It is nil until Open succeeds.
func (n *Node) Treasury() *treasury.Treasury {
	return n.treasury
}

// Database returns the database handle. It is nil until Open succeeds.
func (n *Node) Database() *database.Database {
	return n.db
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Phase 1: Stop accepting new work
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Drain event handlers
	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	// Phase 3: Close database and flush traces
	for i := len(n.shutdownFuncs) - 1; i >= 0; i-- {
		if fnErr := n.shutdownFuncs[i](ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
