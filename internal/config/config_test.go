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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/votevault/database/plugin"
	_ "github.com/blinklabs-io/votevault/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "votevault.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o600))
	return tmpFile
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Same(t, cfg, GetConfig())
	timeout, err := cfg.ShutdownTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoadCompareFullStruct(t *testing.T) {
	admin := keys.New()
	programID := keys.New()
	tmpFile := writeConfigFile(t, `
databasePath: "/var/lib/votevault"
bindAddr: "127.0.0.1"
apiPort: 9000
metricsPort: 9001
shutdownTimeout: "10s"
programId: "`+programID.String()+`"
administrators:
  - "`+admin.String()+`"
tracing: true
`)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	expected := &Config{
		MetadataPlugin:  DefaultMetadataPlugin,
		BlobPlugin:      DefaultBlobPlugin,
		DatabasePath:    "/var/lib/votevault",
		BindAddr:        "127.0.0.1",
		ShutdownTimeout: "10s",
		ProgramId:       programID.String(),
		Administrators:  []string{admin.String()},
		ApiPort:         9000,
		MetricsPort:     9001,
		Tracing:         true,
	}
	assert.Equal(t, expected, cfg)
	programKey, err := cfg.ProgramKey()
	require.NoError(t, err)
	assert.Equal(t, programID, programKey)
	adminKeys, err := cfg.AdministratorKeys()
	require.NoError(t, err)
	assert.Equal(t, []keys.Key{admin}, adminKeys)
}

func TestLoadConfigSection(t *testing.T) {
	tmpFile := writeConfigFile(t, `
config:
  apiPort: 7000
database:
  metadata:
    plugin: sqlite
    sqlite:
      max-connections: 3
`)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, uint(7000), cfg.ApiPort)
	assert.Equal(t, "sqlite", cfg.MetadataPlugin)
	// Untouched values keep their defaults
	assert.Equal(t, uint(12798), cfg.MetricsPort)
}

func TestLoadUnknownPluginOption(t *testing.T) {
	tmpFile := writeConfigFile(t, `
metadata:
  sqlite:
    no-such-option: 1
`)
	_, err := LoadConfig(tmpFile)
	require.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	tmpFile := writeConfigFile(t, `
apiPort: 9000
`)
	t.Setenv("VOTEVAULT_API_PORT", "9100")
	t.Setenv("VOTEVAULT_DATABASE_PATH", "/data")
	t.Setenv("VOTEVAULT_DATABASE_METADATA_PLUGIN", "postgres")
	t.Setenv(
		plugin.OptionEnvVar(plugin.PluginTypeMetadata, "sqlite", "max-connections"),
		"4",
	)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, uint(9100), cfg.ApiPort)
	assert.Equal(t, "/data", cfg.DatabasePath)
	assert.Equal(t, "postgres", cfg.MetadataPlugin)
}

func TestLoadInvalidValues(t *testing.T) {
	testDefs := []struct {
		name    string
		content string
	}{
		{name: "shutdown timeout", content: `shutdownTimeout: "soon"`},
		{name: "program id", content: `programId: "not-a-key"`},
		{name: "administrator", content: "administrators:\n  - \"0OIl\""},
		{name: "yaml", content: "apiPort: [1"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, testDef.content))
			require.Error(t, err)
		})
	}
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(t.Context()))
	cfg := defaultConfig()
	assert.Same(t, cfg, FromContext(WithContext(t.Context(), cfg)))
}
