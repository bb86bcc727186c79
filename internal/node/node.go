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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/votevault"
	"github.com/blinklabs-io/votevault/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds a votevault node from the loaded configuration. The API listener
// is only configured when withAPI is set.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	withAPI bool,
) (*votevault.Node, error) {
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, err
	}
	administrators, err := cfg.AdministratorKeys()
	if err != nil {
		return nil, err
	}
	opts := []votevault.ConfigOptionFunc{
		votevault.WithDatabasePath(cfg.DatabasePath),
		votevault.WithBlobPlugin(cfg.BlobPlugin),
		votevault.WithMetadataPlugin(cfg.MetadataPlugin),
		votevault.WithAdministrators(administrators...),
		votevault.WithShutdownTimeout(shutdownTimeout),
		votevault.WithTracing(cfg.Tracing),
		votevault.WithTracingStdout(cfg.TracingStdout),
	}
	if logger != nil {
		opts = append(opts, votevault.WithLogger(logger))
	}
	if promRegistry != nil {
		opts = append(opts, votevault.WithPrometheusRegistry(promRegistry))
	}
	programID, err := cfg.ProgramKey()
	if err != nil {
		return nil, err
	}
	if !programID.IsZero() {
		opts = append(opts, votevault.WithProgramID(programID))
	}
	if withAPI && cfg.ApiPort > 0 {
		opts = append(
			opts,
			votevault.WithAPIListenAddress(
				fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
			),
		)
	}
	return votevault.New(votevault.NewConfig(opts...))
}

// Run starts the node with the REST API and the metrics listener and blocks
// until SIGINT or SIGTERM is received
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	// Enable metrics with default prometheus registry
	n, err := New(cfg, logger, prometheus.DefaultRegisterer, true)
	if err != nil {
		return err
	}
	// Metrics and debug listener
	var metricsServer *http.Server
	metricsErrChan := make(chan error, 1)
	if cfg.MetricsPort > 0 {
		http.Handle("/metrics", promhttp.Handler())
		metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
		logger.Info(
			"serving prometheus metrics on "+metricsAddr,
			"component", "node",
		)
		metricsServer = &http.Server{
			Addr:              metricsAddr,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				metricsErrChan <- fmt.Errorf(
					"failed to start metrics listener: %w",
					err,
				)
			}
		}()
	}
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(signalCtx)
	}()

	var runErr error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
	case runErr = <-errChan:
		if runErr != nil {
			logger.Error("node error", "error", runErr)
		}
	case runErr = <-metricsErrChan:
		logger.Error("metrics listener error", "error", runErr)
	}
	signalCtxStop()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return errors.Join(runErr, err)
	}
	if runErr == nil {
		logger.Info("shutdown complete")
	}
	return runErr
}
