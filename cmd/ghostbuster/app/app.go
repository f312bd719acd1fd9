package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xericdusk/ghostbuster/internal/candidate"
	"github.com/xericdusk/ghostbuster/internal/position"
	"github.com/xericdusk/ghostbuster/internal/rssi"
	"github.com/xericdusk/ghostbuster/internal/server"
	"github.com/xericdusk/ghostbuster/internal/storage"
	"github.com/xericdusk/ghostbuster/internal/sweep"
	"github.com/xericdusk/ghostbuster/internal/track"
)

// Run wires the service together and blocks until ctx is cancelled or a
// fatal error occurs. Missing external tools are not fatal: the affected
// path degrades and keeps reporting its error on every attempt.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}
	defer store.Close()

	runner := createSweepRunner(&config.Sweep, logger)
	scheduler := sweep.NewScheduler(runner,
		time.Duration(config.Sweep.IntervalSeconds*float64(time.Second)),
		sweep.WithSchedulerLogger(logger.With(slog.String("component", "scheduler"))))

	extractor := candidate.NewExtractor(config.Sweep.ThresholdDBm)

	meter := createMeter(&config.Measurement, logger)

	positions := position.NewFeed(position.Position{
		Latitude:  config.Position.FallbackLatitude,
		Longitude: config.Position.FallbackLongitude,
	})

	hub := server.NewHub(logger.With(slog.String("component", "live")))

	orchestrator := NewOrchestrator(
		store,
		scheduler,
		extractor,
		meter,
		positions,
		hub,
		time.Duration(config.Track.TickSeconds*float64(time.Second)),
		logger,
	)

	srv := server.New(orchestrator, hub,
		server.WithAddr(config.Server.Addr),
		server.WithLogger(logger))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run(ctx)
	}()

	runErr := orchestrator.Run(ctx)
	cancel()

	if err := <-serverErr; err != nil && runErr == nil {
		runErr = fmt.Errorf("operator API: %w", err)
	}

	return runErr
}

func createSweepRunner(config *SweepConfig, logger *slog.Logger) sweep.Runner {
	runner, err := sweep.NewCommandRunner(&config.Tool,
		sweep.WithTimeout(time.Duration(config.TimeoutSeconds*float64(time.Second))),
		sweep.WithRunnerLogger(logger))
	if err != nil {
		logger.Warn("sweep tool unavailable, sweeps will fail until restart",
			slog.String("error", err.Error()))
		return sweep.Unavailable{Err: err}
	}
	return runner
}

func createMeter(config *rssi.Config, logger *slog.Logger) track.PowerMeter {
	meter, err := rssi.NewCommandMeter(config, rssi.WithMeterLogger(logger))
	if err != nil {
		logger.Warn("measurement tool unavailable, ticks will record the sentinel power",
			slog.String("error", err.Error()))
		return rssi.Unavailable{Err: err}
	}
	return meter
}

func createStorage(config *StorageConfig) (storage.Store, error) {
	if err := os.MkdirAll(config.DataDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	dbPath := filepath.Join(config.DataDirectory,
		fmt.Sprintf("ghostbuster_%s.sqlite", time.Now().UTC().Format("20060102_150405")))

	return storage.NewSqliteStore(dbPath), nil
}
