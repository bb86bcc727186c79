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

package main

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/blinklabs-io/votevault/api"
	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/governance"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the CLI against a data directory and returns stdout
func runCommand(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	globalFlags.caller = ""
	globalFlags.debug = false
	configFile = ""
	rootCmd, err := rootCommand()
	require.NoError(t, err)
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--database-path", dataDir}, args...))
	err = rootCmd.Execute()
	return stdout.String(), err
}

func TestParseCaller(t *testing.T) {
	caller, err := parseCaller("")
	require.NoError(t, err)
	assert.Equal(t, auth.Anonymous, caller)

	key := keys.New()
	caller, err = parseCaller(key.String())
	require.NoError(t, err)
	assert.True(t, caller.Is(key))

	_, err = parseCaller("not a key")
	require.Error(t, err)
}

func TestListPlugins(t *testing.T) {
	shouldExit, output := listPlugins("badger", "sqlite")
	assert.False(t, shouldExit)
	assert.Empty(t, output)

	shouldExit, output = listPlugins("list", "list")
	assert.True(t, shouldExit)
	assert.Contains(t, output, "Available blob plugins:")
	assert.Contains(t, output, "badger")
	assert.Contains(t, output, "Available metadata plugins:")
	assert.Contains(t, output, "sqlite")

	all := listAllPlugins()
	assert.Contains(t, all, "Blob Storage Plugins:")
	assert.Contains(t, all, "Metadata Storage Plugins:")
}

func TestGovernanceCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := t.TempDir()
	owner := keys.New()
	voter := keys.New()

	_, err := runCommand(t, dataDir, "counter", "init")
	require.Error(t, err, "anonymous caller must be rejected")

	out, err := runCommand(t, dataDir, "--caller", owner.String(), "counter", "init")
	require.NoError(t, err)
	var counter api.CounterResponse
	require.NoError(t, json.Unmarshal([]byte(out), &counter))
	firstID := counter.NextID

	deadline := time.Now().Add(time.Hour).Unix()
	out, err = runCommand(
		t,
		dataDir,
		"--caller", owner.String(),
		"proposal", "create",
		"--deadline", strconv.FormatInt(deadline, 10),
	)
	require.NoError(t, err)
	var created api.CreateProposalResponse
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, firstID, created.ID)
	id := strconv.FormatUint(created.ID, 10)

	out, err = runCommand(t, dataDir, "--caller", voter.String(), "proposal", "vote", id)
	require.NoError(t, err)
	var proposal governance.Proposal
	require.NoError(t, json.Unmarshal([]byte(out), &proposal))
	assert.Equal(t, uint64(1), proposal.VoteCount)
	assert.Equal(t, owner, proposal.Authority)

	_, err = runCommand(t, dataDir, "--caller", voter.String(), "proposal", "vote", id)
	require.Error(t, err, "second vote must be rejected")

	out, err = runCommand(t, dataDir, "proposal", "has-voted", id, voter.String())
	require.NoError(t, err)
	var hasVoted api.HasVotedResponse
	require.NoError(t, json.Unmarshal([]byte(out), &hasVoted))
	assert.True(t, hasVoted.Voted)

	_, err = runCommand(t, dataDir, "--caller", owner.String(), "proposal", "declare", id)
	require.Error(t, err, "declare before the deadline must be rejected")

	out, err = runCommand(t, dataDir, "journal")
	require.NoError(t, err)
	var entries []database.JournalEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "initialize_counter", entries[0].Operation)
	assert.Equal(t, "create_proposal", entries[1].Operation)
	assert.Equal(t, "cast_vote", entries[2].Operation)
}

func TestArgumentValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := t.TempDir()
	testDefs := [][]string{
		{"proposal", "show", "abc"},
		{"proposal", "show"},
		{"account", "tokens", "bogus!"},
		{"treasury", "set-price", keys.New().String(), "-1"},
		{"journal", "--limit", "-1"},
		{"--caller", "bogus!", "counter", "init"},
	}
	for _, args := range testDefs {
		_, err := runCommand(t, dataDir, args...)
		assert.Error(t, err, "args: %v", args)
	}
}
