package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/xericdusk/ghostbuster/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return renderSession(ctx, store, config, logger)
}

func renderSession(ctx context.Context, store storage.Store, config *Config, logger *slog.Logger) error {
	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading session %d: %w", config.SessionID, err)
	}

	samples, err := store.Samples(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading samples for session %d: %w", config.SessionID, err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("session %d has no samples to plot", config.SessionID)
	}

	logger.Info("loaded session",
		slog.Group("session",
			slog.String("uuid", session.UUID),
			slog.Int64("frequency", session.Frequency),
			slog.Int("samples", len(samples)),
			slog.String("start", samples[0].Timestamp.Local().Format(time.DateTime)),
			slog.String("end", samples[len(samples)-1].Timestamp.Local().Format(time.DateTime)),
		))

	renderer, err := NewTrackRenderer(RenderConfig{
		Width:    config.Width,
		MinPower: config.MinPower,
		MaxPower: config.MaxPower,
		Annotate: !config.NoAnnotations,
		FontPath: config.FontPath,
	})
	if err != nil {
		return fmt.Errorf("creating track renderer: %w", err)
	}

	if !config.NoAnnotations && config.FontPath == "" {
		logger.Warn("no font provided, scales and info bar will be skipped")
	}

	logger.Info("rendering track",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", config.Width),
		))

	img, err := renderer.Render(&TrackData{Session: session, Samples: samples})
	if err != nil {
		return fmt.Errorf("rendering track: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
