package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"totw-tracker/internal/cache"
	"totw-tracker/internal/history"
	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/logger"
	"totw-tracker/internal/scraper"
	"totw-tracker/internal/store"
	"totw-tracker/internal/trace"
	"totw-tracker/internal/tracker"
	"totw-tracker/internal/tracker/trackerobs"
)

var errHistoryDisabled = errors.New("snapshot history is disabled; set history.enabled in the config")

// initializeSystem loads .env and starts the logger. Tracing waits for
// the config, see initializeTracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initializeTracing enables span export from the tracing section of cfg.
// LOG_TRACING_ENABLED=true turns it on without editing the config.
func initializeTracing(ctx context.Context, cfg *store.Config) {
	tc := cfg.Tracing
	if os.Getenv("LOG_TRACING_ENABLED") == "true" {
		tc.Enabled = true
	}
	if err := trace.Setup(ctx, tc, cfg.Scraper.Platform); err != nil {
		logger.Warn(ctx, "Tracing disabled", "error", err)
	}
}

// shutdownSystem flushes spans and buffered log entries
func shutdownSystem() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := trace.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shut down tracer: %v\n", err)
	}
	_ = logger.Sync()
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// openHistory opens the snapshot database when history is enabled
func openHistory(ctx context.Context, cfg *store.Config) (*history.History, error) {
	if !cfg.History.Enabled {
		return nil, errHistoryDisabled
	}
	h, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "Snapshot history opened", "path", cfg.History.Path)
	return h, nil
}

// initializeTracker wires caches, fetcher and history into the tracker
// service and wraps it with observability. The returned func releases
// everything the tracker opened.
func initializeTracker(ctx context.Context, cfg *store.Config) (interfaces.Tracker, func(), error) {
	caches := cache.NewStore(cfg.Cache.Dir, cfg.Cache.SquadFile, cfg.Cache.PlayerStatsFile)
	fetcher := scraper.NewCollyFetcher(cfg.Scraper)

	opts := []tracker.Option{}
	cleanup := func() {}

	h, err := openHistory(ctx, cfg)
	switch {
	case errors.Is(err, errHistoryDisabled):
	case err != nil:
		return nil, nil, err
	default:
		opts = append(opts, tracker.WithRecorder(h))
		cleanup = func() {
			if err := h.Close(); err != nil {
				logger.Warn(ctx, "Failed to close history", "error", err)
			}
		}
	}

	svc := tracker.New(cfg, fetcher, caches, opts...)

	// Wrap with observability middleware
	return trackerobs.Wrap(svc), cleanup, nil
}
