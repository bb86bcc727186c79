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

package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoresAreIsolated(t *testing.T) {
	a, err := New("", nil, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := New("", nil, nil)
	require.NoError(t, err)
	defer b.Close()

	created, err := a.CreateSequenceCounter(
		&models.SequenceCounter{NextID: 0},
		nil,
	)
	require.NoError(t, err)
	assert.True(t, created)

	counter, err := b.GetSequenceCounter(nil)
	require.NoError(t, err)
	assert.Nil(t, counter, "second in-memory store should be empty")
}

func TestFileStorePersists(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested")
	db, err := New(dataDir, nil, nil)
	require.NoError(t, err)

	txn := db.Transaction(t.Context())
	require.NoError(
		t,
		db.CreateProposal(
			&models.Proposal{
				ProposalID: 7,
				Deadline:   1000,
			},
			txn,
		),
	)
	require.NoError(t, db.SetCommitTimestamp(42, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, db.Close())

	_, err = os.Stat(filepath.Join(dataDir, "metadata.sqlite"))
	require.NoError(t, err)

	db, err = New(dataDir, nil, nil)
	require.NoError(t, err)
	defer db.Close()
	proposal, err := db.GetProposal(7, nil)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, int64(1000), proposal.Deadline)
	ts, err := db.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
}

func TestStartIsIdempotentAndStopCloses(t *testing.T) {
	db, err := NewWithOptions()
	require.NoError(t, err)
	require.NoError(t, db.Start())
	store := db.Store
	require.NoError(t, db.Start())
	assert.Same(t, store, db.Store)
	require.NoError(t, db.Stop())
	assert.Nil(t, db.Store)
	// Stopping twice is harmless
	require.NoError(t, db.Stop())
}

func TestFinishedTxnRejected(t *testing.T) {
	db, err := New("", nil, nil)
	require.NoError(t, err)
	defer db.Close()
	txn := db.Transaction(t.Context())
	require.NoError(t, txn.Rollback())
	_, err = db.GetProposal(1, txn)
	assert.ErrorIs(t, err, types.ErrTxnFinished)
}
