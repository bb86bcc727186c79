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

// Package api serves the governance and treasury operations over a JSON REST
// interface.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/governance"
	"github.com/blinklabs-io/votevault/treasury"
)

const (
	DefaultListenAddress = ":8080"
)

type Config struct {
	ListenAddress string
	// Identity resolves the caller of a request. Defaults to HeaderIdentity.
	Identity IdentityFunc
}

// Server is the REST API server
type Server struct {
	config     Config
	logger     *slog.Logger
	db         *database.Database
	governance *governance.Governance
	treasury   *treasury.Treasury
	httpServer *http.Server
	mu         sync.Mutex
}

// New creates a new API server instance
func New(
	cfg Config,
	db *database.Database,
	gov *governance.Governance,
	tr *treasury.Treasury,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.Identity == nil {
		cfg.Identity = HeaderIdentity
	}
	return &Server{
		config:     cfg,
		logger:     logger,
		db:         db,
		governance: gov,
		treasury:   tr,
	}
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Governance
	mux.HandleFunc("GET /api/v0/governance/counter", s.handleGetCounter)
	mux.HandleFunc("POST /api/v0/governance/counter", s.handleInitializeCounter)
	mux.HandleFunc("GET /api/v0/proposals", s.handleListProposals)
	mux.HandleFunc("POST /api/v0/proposals", s.handleCreateProposal)
	mux.HandleFunc("GET /api/v0/proposals/{id}", s.handleGetProposal)
	mux.HandleFunc("POST /api/v0/proposals/{id}/votes", s.handleCastVote)
	mux.HandleFunc("GET /api/v0/proposals/{id}/votes/{voter}", s.handleHasVoted)
	mux.HandleFunc("POST /api/v0/proposals/{id}/winner", s.handleDeclareWinner)

	// Treasury
	mux.HandleFunc("GET /api/v0/treasury", s.handleGetTreasury)
	mux.HandleFunc("POST /api/v0/treasury", s.handleInitializeTreasury)
	mux.HandleFunc("PUT /api/v0/treasury/price", s.handleUpdatePrice)
	mux.HandleFunc("PUT /api/v0/treasury/volume", s.handleUpdateVolume)
	mux.HandleFunc("POST /api/v0/treasury/purchases", s.handleBuyTokens)
	mux.HandleFunc("POST /api/v0/mints", s.handleCreateMint)
	mux.HandleFunc("GET /api/v0/mints/{key}", s.handleGetMint)
	mux.HandleFunc("POST /api/v0/accounts/collateral", s.handleOpenCollateralAccount)
	mux.HandleFunc("GET /api/v0/accounts/collateral/{key}", s.handleGetCollateralAccount)
	mux.HandleFunc(
		"POST /api/v0/accounts/collateral/{key}/deposits",
		s.handleDepositCollateral,
	)
	mux.HandleFunc("POST /api/v0/accounts/tokens", s.handleOpenTokenAccount)
	mux.HandleFunc("GET /api/v0/accounts/tokens/{key}", s.handleGetTokenAccount)
	mux.HandleFunc("GET /api/v0/owners/{owner}/accounts", s.handleOwnerAccounts)

	mux.HandleFunc("GET /api/v0/journal", s.handleJournal)
	return mux
}

// Start starts the HTTP server in a background goroutine
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	ln, err := s.listen(server)
	if err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return err
	}
	s.logger.Info(
		"API listener started on " + ln.Addr().String(),
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		srv := s.httpServer
		s.httpServer = nil
		s.mu.Unlock()
		if srv == nil {
			return
		}
		s.logger.Debug("context cancelled, shutting down API server")
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}

// listen binds the socket first so port conflicts are reported by Start,
// then serves in a background goroutine
func (s *Server) listen(server *http.Server) (net.Listener, error) {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return ln, nil
}
