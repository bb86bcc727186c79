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
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/blinklabs-io/votevault/api"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultProgramID is the program key treasury records are derived from when
// none is configured
var DefaultProgramID = keys.Derive(keys.Key{}, []byte("votevault"))

type Config struct {
	promRegistry   prometheus.Registerer
	logger         *slog.Logger
	clock          clock.Clock
	identity       api.IdentityFunc
	dataDir        string
	blobPlugin     string
	metadataPlugin string
	// API listen address (empty = disabled)
	apiListenAddress string
	programID        keys.Key
	administrators   []keys.Key
	tracing          bool
	tracingStdout    bool
	shutdownTimeout  time.Duration
}

func (c *Config) validate() error {
	if c.programID.IsZero() {
		return errors.New("program ID must not be zero")
	}
	for _, admin := range c.administrators {
		if admin.IsZero() {
			return errors.New("administrator key must not be zero")
		}
	}
	if c.shutdownTimeout < 0 {
		return errors.New("shutdown timeout must not be negative")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new votevault config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clock:     clock.New(),
		programID: DefaultProgramID,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithClock specifies the clock used for proposal deadlines and timestamps
func WithClock(clk clock.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clk
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithAPIListenAddress enables the REST API on the given address
func WithAPIListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithIdentity specifies how the REST API resolves the caller of a request.
// The default trusts the api.CallerHeader header.
func WithIdentity(identity api.IdentityFunc) ConfigOptionFunc {
	return func(c *Config) {
		c.identity = identity
	}
}

// WithProgramID specifies the program key the treasury derives its records from
func WithProgramID(programID keys.Key) ConfigOptionFunc {
	return func(c *Config) {
		c.programID = programID
	}
}

// WithAdministrators specifies keys allowed to declare the result of any proposal
func WithAdministrators(administrators ...keys.Key) ConfigOptionFunc {
	return func(c *Config) {
		c.administrators = administrators
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
