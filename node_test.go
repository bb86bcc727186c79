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

package votevault

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/governance"
	"github.com/blinklabs-io/votevault/internal/test/testutil"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeOpen(t *testing.T) {
	mockClock := clock.NewMock()
	mockClock.Set(time.Unix(1_700_000_000, 0))
	admin := keys.New()
	n, err := New(NewConfig(
		WithClock(mockClock),
		WithAdministrators(admin),
		WithPrometheusRegistry(prometheus.NewRegistry()),
	))
	require.NoError(t, err)
	require.NoError(t, n.Open())
	// Open is idempotent
	require.NoError(t, n.Open())
	defer func() {
		require.NoError(t, n.Stop())
	}()

	_, endedCh := n.EventBus().Subscribe(governance.ProposalEndedEventType)

	ctx := context.Background()
	author := auth.Verified(keys.New())
	gov := n.Governance()
	require.NoError(t, gov.InitializeCounter(ctx, author))
	id, err := gov.CreateProposal(ctx, author, mockClock.Now().Unix()+60)
	require.NoError(t, err)
	require.NoError(t, gov.CastVote(ctx, auth.Verified(keys.New()), id))
	mockClock.Add(time.Minute)
	tally, err := gov.DeclareWinner(ctx, auth.Verified(admin), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tally)
	evt := testutil.RequireReceive(t, endedCh, testutil.DefaultTimeout, "proposal ended event")
	assert.Equal(t, governance.ProposalEndedEventType, evt.Type)

	_, err = n.Treasury().Config(ctx)
	require.ErrorIs(t, err, failure.ErrNotInitialized)
	assert.Equal(
		t,
		n.Treasury().ConfigKey(),
		keys.Derive(DefaultProgramID, []byte("treasury_config")),
	)
}

func TestNodeRun(t *testing.T) {
	n, err := New(NewConfig(
		WithAPIListenAddress("127.0.0.1:0"),
		WithShutdownTimeout(5*time.Second),
	))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(ctx)
	}()

	select {
	case <-n.started:
	case err := <-errCh:
		t.Fatalf("node exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("node did not start")
	}
	require.NotNil(t, n.api)

	require.NoError(t, n.Stop())
	require.NoError(t, testutil.RequireReceive(t, errCh, testutil.DefaultTimeout, "node stop"))
	// A second stop is a no-op
	require.NoError(t, n.Stop())
}
