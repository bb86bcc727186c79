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

package gormstore

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type otherTxn struct{}

func (otherTxn) Commit() error   { return nil }
func (otherTxn) Rollback() error { return nil }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open(
			fmt.Sprintf("file:gormstore-%s?mode=memory&cache=shared", uuid.NewString()),
		),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	s, err := New(db, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestResolveDB(t *testing.T) {
	s := newTestStore(t)

	db, err := s.resolveDB(nil)
	require.NoError(t, err)
	assert.Same(t, s.DB(), db)

	_, err = s.resolveDB(otherTxn{})
	assert.ErrorIs(t, err, types.ErrTxnWrongType)

	txn := s.Transaction(t.Context())
	require.NoError(t, txn.Commit())
	_, err = s.resolveDB(txn)
	assert.ErrorIs(t, err, types.ErrTxnFinished)
	// Finishing twice is a no-op
	require.NoError(t, txn.Commit())
	require.NoError(t, txn.Rollback())
}

func TestCommitTimestamp(t *testing.T) {
	s := newTestStore(t)

	ts, err := s.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Zero(t, ts)

	assert.ErrorIs(t, s.SetCommitTimestamp(1, nil), types.ErrNilTxn)

	for _, want := range []int64{100, 200} {
		txn := s.Transaction(t.Context())
		require.NoError(t, s.SetCommitTimestamp(want, txn))
		require.NoError(t, txn.Commit())
		ts, err = s.GetCommitTimestamp()
		require.NoError(t, err)
		assert.Equal(t, want, ts)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := newTestStore(t)

	counter, err := s.GetSequenceCounter(nil)
	require.NoError(t, err)
	assert.Nil(t, counter)

	created, err := s.CreateSequenceCounter(&models.SequenceCounter{}, nil)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateSequenceCounter(
		&models.SequenceCounter{NextID: 9},
		nil,
	)
	require.NoError(t, err)
	assert.False(t, created, "second create should not insert")

	counter, err = s.GetSequenceCounter(nil)
	require.NoError(t, err)
	require.NotNil(t, counter)
	assert.Equal(t, types.Uint64(0), counter.NextID)

	counter.NextID = types.Uint64(^uint64(0))
	require.NoError(t, s.SetSequenceCounter(counter, nil))
	counter, err = s.GetSequenceCounter(nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(^uint64(0)), counter.NextID)
}

func TestProposalsAndVotes(t *testing.T) {
	s := newTestStore(t)
	authority := keys.New()
	voter := keys.New()

	for _, id := range []uint64{2, 0, 1} {
		require.NoError(
			t,
			s.CreateProposal(
				&models.Proposal{
					ProposalID: types.Uint64(id),
					Authority:  authority,
					Deadline:   int64(id) + 100,
				},
				nil,
			),
		)
	}
	proposals, err := s.GetProposals(nil)
	require.NoError(t, err)
	require.Len(t, proposals, 3)
	assert.Equal(t, types.Uint64(2), proposals[0].ProposalID)

	missing, err := s.GetProposal(5, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)

	proposal, err := s.GetProposal(1, nil)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, authority, proposal.Authority)
	proposal.VoteCount = 1
	proposal.Status = models.ProposalStatusEnded
	require.NoError(t, s.SetProposal(proposal, nil))
	proposal, err = s.GetProposal(1, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(1), proposal.VoteCount)
	assert.Equal(t, models.ProposalStatusEnded, proposal.Status)

	record, err := s.GetVoteRecord(1, voter, nil)
	require.NoError(t, err)
	assert.Nil(t, record)

	created, err := s.CreateVoteRecord(
		&models.VoteRecord{ProposalID: 1, Voter: voter, CastAt: 10},
		nil,
	)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = s.CreateVoteRecord(
		&models.VoteRecord{ProposalID: 1, Voter: voter, CastAt: 11},
		nil,
	)
	require.NoError(t, err)
	assert.False(t, created, "duplicate vote should not insert")
	// Same voter on another proposal is allowed
	created, err = s.CreateVoteRecord(
		&models.VoteRecord{ProposalID: 2, Voter: voter, CastAt: 12},
		nil,
	)
	require.NoError(t, err)
	assert.True(t, created)

	record, err = s.GetVoteRecord(1, voter, nil)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(10), record.CastAt)

	count, err := s.CountVoteRecords(1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	s := newTestStore(t)
	txn := s.Transaction(t.Context())
	require.NoError(
		t,
		s.CreateProposal(&models.Proposal{ProposalID: 3}, txn),
	)
	require.NoError(t, txn.Rollback())
	proposal, err := s.GetProposal(3, nil)
	require.NoError(t, err)
	assert.Nil(t, proposal)
}

func TestTreasuryAndAccounts(t *testing.T) {
	s := newTestStore(t)
	owner := keys.New()
	mintKey := keys.New()

	cfg, err := s.GetTreasuryConfig(nil)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	source := keys.New()
	created, err := s.CreateTreasuryConfig(
		&models.TreasuryConfig{
			Authority:         owner,
			TokenType:         mintKey,
			SolPrice:          5,
			TokensPerPurchase: 10,
			SupplySource:      &source,
		},
		nil,
	)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = s.CreateTreasuryConfig(&models.TreasuryConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, created)
	cfg, err = s.GetTreasuryConfig(nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.SupplySource)
	assert.Equal(t, source, *cfg.SupplySource)
	cfg.SolPrice = 6
	require.NoError(t, s.SetTreasuryConfig(cfg, nil))
	cfg, err = s.GetTreasuryConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(6), cfg.SolPrice)

	require.NoError(
		t,
		s.CreateMint(&models.Mint{Key: mintKey, Decimals: 9}, nil),
	)
	mint, err := s.GetMint(mintKey, nil)
	require.NoError(t, err)
	require.NotNil(t, mint)
	mint.Supply = 100
	require.NoError(t, s.SetMint(mint, nil))
	mint, err = s.GetMint(mintKey, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(100), mint.Supply)
	missingMint, err := s.GetMint(keys.New(), nil)
	require.NoError(t, err)
	assert.Nil(t, missingMint)

	tokenKey := keys.New()
	require.NoError(
		t,
		s.CreateTokenAccount(
			&models.TokenAccount{Key: tokenKey, Owner: owner, Mint: mintKey},
			nil,
		),
	)
	account, err := s.GetTokenAccount(tokenKey, nil)
	require.NoError(t, err)
	require.NotNil(t, account)
	account.Amount = 50
	require.NoError(t, s.SetTokenAccount(account, nil))
	byMint, err := s.GetTokenAccountsByMint(mintKey, nil)
	require.NoError(t, err)
	require.Len(t, byMint, 1)
	assert.Equal(t, types.Uint64(50), byMint[0].Amount)
	byOwner, err := s.GetTokenAccountsByOwner(owner, nil)
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)

	collateralKey := keys.New()
	require.NoError(
		t,
		s.CreateCollateralAccount(
			&models.CollateralAccount{Key: collateralKey, Owner: owner, Lamports: 7},
			nil,
		),
	)
	collateral, err := s.GetCollateralAccount(collateralKey, nil)
	require.NoError(t, err)
	require.NotNil(t, collateral)
	collateral.Lamports = 8
	require.NoError(t, s.SetCollateralAccount(collateral, nil))
	collaterals, err := s.GetCollateralAccountsByOwner(owner, nil)
	require.NoError(t, err)
	require.Len(t, collaterals, 1)
	assert.Equal(t, types.Uint64(8), collaterals[0].Lamports)

	// Duplicate account keys are rejected by the unique index
	assert.Error(
		t,
		s.CreateCollateralAccount(
			&models.CollateralAccount{Key: collateralKey, Owner: owner},
			nil,
		),
	)
}
