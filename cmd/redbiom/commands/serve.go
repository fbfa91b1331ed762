package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/adswafford/redbiom/internal/api"
	"github.com/adswafford/redbiom/internal/api/auth"
	"github.com/adswafford/redbiom/internal/logger"
	"github.com/adswafford/redbiom/pkg/config"
	"github.com/adswafford/redbiom/pkg/kv"
	"github.com/adswafford/redbiom/pkg/kv/badgerkv"
	"github.com/adswafford/redbiom/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the redbiom HTTP API",
	Long: `Serve the redbiom HTTP API over the configured key-value backend.

The server exposes loading routes under /api/v1 (bearer-token protected
when api.auth.enabled is set), retrieval and summarization routes, and
health probes. With metrics.enabled, a Prometheus endpoint is served on
its own port.

Examples:
  # Serve with the default configuration
  redbiom serve

  # Serve with environment variable overrides
  REDBIOM_LOGGING_LEVEL=DEBUG redbiom serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("Configuration loaded", "backend", cfg.Store.Backend)

	var obs kv.OpObserver
	if cfg.Metrics.Enabled {
		metrics.Init()
		if m := metrics.NewKVMetrics(cfg.Store.Backend); m != nil {
			obs = m
		}
	}

	store, err := config.OpenStore(cfg, obs)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if cfg.Metrics.Enabled {
		if b, ok := kv.Unwrap(store).(*badgerkv.Store); ok {
			metrics.RegisterBadger(b.DB())
		}
	}

	var tokens *auth.TokenService
	if cfg.API.Auth.Enabled {
		tokens, err = auth.NewTokenService(auth.Config{Secret: cfg.API.GetAuthSecret()})
		if err != nil {
			return fmt.Errorf("failed to initialize auth: %w", err)
		}
		logger.Info("Admin route auth enabled")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)

	apiServer := api.NewServer(cfg.API, api.NewRouter(store, tokens))
	group.Go(func() error { return apiServer.Start(groupCtx) })

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Port)
		group.Go(func() error { return metricsServer.Start(groupCtx) })
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	case <-groupCtx.Done():
	}

	if err := group.Wait(); err != nil {
		logger.Error("Server error", logger.KeyError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
