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

// Package treasury sells a fungible token for collateral at a price set by
// the treasury authority. It also keeps the ledger of mints, token accounts
// and collateral accounts the exchange moves funds between.
package treasury

import (
	"errors"
	"io"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/event"
	"github.com/blinklabs-io/votevault/internal/operation"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/prometheus/client_golang/prometheus"
)

const tracerName = "github.com/blinklabs-io/votevault/treasury"

// Seeds of the keys derived from the program key
var (
	seedConfig        = []byte("treasury_config")
	seedMint          = []byte("x_mint")
	seedVault         = []byte("sol_vault")
	seedMintAuthority = []byte("mint_authority")
	seedTokenAccount  = []byte("token_account")
)

type Config struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Clock        clock.Clock
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// ProgramID is the key all treasury keys are derived from
	ProgramID keys.Key
}

type Treasury struct {
	config  Config
	db      *database.Database
	clock   clock.Clock
	logger  *slog.Logger
	metrics *treasuryMetrics
	ops     *operation.Recorder
	// beforeCredit runs between the collateral debit and the token credit
	// of a purchase
	beforeCredit func() error
}

func New(cfg Config) (*Treasury, error) {
	if cfg.Database == nil {
		return nil, errors.New("treasury: database is required")
	}
	if cfg.ProgramID.IsZero() {
		return nil, errors.New("treasury: program ID is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	t := &Treasury{
		config: cfg,
		db:     cfg.Database,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}
	var rejected *prometheus.CounterVec
	if cfg.PromRegistry != nil {
		t.metrics = &treasuryMetrics{}
		t.metrics.init(cfg.PromRegistry)
		rejected = t.metrics.rejected
	}
	t.ops = operation.NewRecorder("treasury", tracerName, t.logger, rejected)
	return t, nil
}

// ConfigKey is the derived address of the treasury configuration
func (t *Treasury) ConfigKey() keys.Key {
	return keys.Derive(t.config.ProgramID, seedConfig)
}

// DefaultMintKey is the mint created when the treasury is initialized
// without a token type
func (t *Treasury) DefaultMintKey() keys.Key {
	return keys.Derive(t.config.ProgramID, seedMint)
}

// DefaultVaultKey is the collateral account created when the treasury is
// initialized without a vault
func (t *Treasury) DefaultVaultKey() keys.Key {
	return keys.Derive(t.config.ProgramID, seedVault)
}

// MintAuthority is the authority of every mint the treasury can issue
func (t *Treasury) MintAuthority() keys.Key {
	return keys.Derive(t.config.ProgramID, seedMintAuthority)
}

// TokenAccountKey returns the associated token account key for an owner and
// a mint
func (t *Treasury) TokenAccountKey(owner keys.Key, mint keys.Key) keys.Key {
	return keys.Derive(
		t.config.ProgramID,
		seedTokenAccount,
		owner.Bytes(),
		mint.Bytes(),
	)
}

func (t *Treasury) journal(
	txn *database.Txn,
	op string,
	caller auth.Caller,
	fields map[string]string,
) error {
	return t.db.AppendJournal(
		&database.JournalEntry{
			Operation: op,
			Caller:    caller.String(),
			Timestamp: t.clock.Now().Unix(),
			Fields:    fields,
		},
		txn,
	)
}

func (t *Treasury) publish(evtType event.EventType, data any) {
	if t.config.EventBus == nil {
		return
	}
	t.config.EventBus.Publish(evtType, event.NewEvent(evtType, data))
}
