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
	"testing"
	"time"

	"github.com/blinklabs-io/votevault/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.NotNil(t, cfg.clock)
	assert.Equal(t, DefaultProgramID, cfg.programID)
	assert.Empty(t, cfg.apiListenAddress)
	assert.Empty(t, cfg.dataDir)
	require.NoError(t, cfg.validate())
}

func TestConfigOptions(t *testing.T) {
	programID := keys.New()
	admin := keys.New()
	cfg := NewConfig(
		WithDatabasePath("/tmp/votevault"),
		WithBlobPlugin("badger"),
		WithMetadataPlugin("sqlite"),
		WithAPIListenAddress(":8080"),
		WithProgramID(programID),
		WithAdministrators(admin),
		WithTracing(true),
		WithTracingStdout(true),
		WithShutdownTimeout(5*time.Second),
	)
	assert.Equal(t, "/tmp/votevault", cfg.dataDir)
	assert.Equal(t, "badger", cfg.blobPlugin)
	assert.Equal(t, "sqlite", cfg.metadataPlugin)
	assert.Equal(t, ":8080", cfg.apiListenAddress)
	assert.Equal(t, programID, cfg.programID)
	assert.Equal(t, []keys.Key{admin}, cfg.administrators)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	testDefs := []struct {
		name string
		opts []ConfigOptionFunc
	}{
		{
			name: "zero program id",
			opts: []ConfigOptionFunc{WithProgramID(keys.Key{})},
		},
		{
			name: "zero administrator",
			opts: []ConfigOptionFunc{WithAdministrators(keys.New(), keys.Key{})},
		},
		{
			name: "negative shutdown timeout",
			opts: []ConfigOptionFunc{WithShutdownTimeout(-time.Second)},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := New(NewConfig(testDef.opts...))
			require.Error(t, err)
		})
	}
}
