// Package app implements the flightplot tool: it reads one recorded flight
// session and renders its telemetry series as an annotated timeline image.
package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/openflight/tello/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.New(config.DBPath)
	defer store.Close()

	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %d not found", config.SessionID)
	}

	records, err := readRecords(ctx, store, config.SessionID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("session %d has no telemetry", config.SessionID)
	}

	logger.Info("loaded session",
		slog.Group("session",
			slog.Int64("id", session.ID),
			slog.String("startTime", session.StartTime.Local().Format(time.DateTime)),
			slog.String("serial", session.DroneSerial),
			slog.String("records", humanize.Comma(int64(len(records)))),
		))

	renderer, err := NewChartRenderer(ChartConfig{
		Width:    config.Width,
		Height:   config.Height,
		FontPath: config.FontPath,
	})
	if err != nil {
		return fmt.Errorf("creating chart renderer: %w", err)
	}

	logger.Info("rendering chart",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", config.Width),
			slog.Int("height", config.Height),
		))

	img, err := renderer.Render(records)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
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
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: 98})
	}
	return err
}

func readRecords(ctx context.Context, store *storage.Store, sessionID int64) ([]storage.Record, error) {
	reader, err := store.ReadStates(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var records []storage.Record
	for reader.Next() {
		records = append(records, reader.Current())
	}
	if err = reader.Error(); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return records, nil
}
