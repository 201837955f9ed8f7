// Package app implements the flightlog recorder: it joins the drone's
// network, connects the control channel, and records telemetry snapshots
// from a live flight into a per-session SQLite database.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/openflight/tello"
	"github.com/openflight/tello/internal/storage"
)

const storageDir = "data"

// newOptions is a variable so tests can point the connection at a fake
// drone on the loopback.
var newOptions = tello.NewOptions

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer store.Close()

	opts := newOptions()
	opts.Logger = logger
	if config.Network.DroneHost != "" {
		opts.Host = config.Network.DroneHost
	}
	if config.Network.ControlPort != 0 {
		opts.ControlPort = config.Network.ControlPort
	}
	if config.Network.StatePort != 0 {
		opts.StatePort = config.Network.StatePort
	}
	if config.Network.VideoPort != 0 {
		opts.VideoPort = config.Network.VideoPort
	}

	states := opts.WithState()

	var frames <-chan tello.VideoFrame
	if config.Recording.Video {
		frames = opts.WithVideo()
	}

	drone := tello.New()

	var joined *tello.JoinedDrone
	if config.Network.AssumeJoined {
		joined = drone.AssumeNetwork()
	} else {
		logger.Info("waiting for drone network", slog.String("ssidPrefix", config.Network.SSIDPrefix))
		if joined, err = drone.WaitForNetwork(ctx, config.Network.SSIDPrefix); err != nil {
			return fmt.Errorf("waiting for drone network: %w", err)
		}
	}

	conn, err := joined.ConnectWith(ctx, opts)
	if err != nil {
		return fmt.Errorf("connecting to drone: %w", err)
	}

	sessionID, err := createSession(ctx, conn, store, logger)
	if err != nil {
		conn.Disconnect()
		return err
	}
	logger.Info("recording session", slog.Int64("sessionID", sessionID))

	var wg sync.WaitGroup
	if frames != nil {
		if err = conn.StartVideo(); err != nil {
			conn.Disconnect()
			return fmt.Errorf("starting video stream: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			countVideo(frames, logger)
		}()
	}

	err = recordStates(ctx, store, sessionID, states, config, logger)

	// Disconnect first: stopping the listeners is what closes the frames
	// channel the video counter is draining.
	conn.Disconnect()
	wg.Wait()
	return err
}

// createSession queries the drone's identity and opens a session row. The
// identity queries are best-effort; a drone that rejects them still gets
// recorded.
func createSession(ctx context.Context, conn *tello.ConnectedDrone, store *storage.Store, logger *slog.Logger) (int64, error) {
	serial, err := conn.SerialNumber()
	if err != nil {
		logger.Warn("querying serial number", slog.String("error", err.Error()))
	}
	sdkVersion, err := conn.SDKVersion()
	if err != nil {
		logger.Warn("querying SDK version", slog.String("error", err.Error()))
	}

	sessionID, err := store.CreateSession(ctx, serial, sdkVersion)
	if err != nil {
		return 0, fmt.Errorf("creating session: %w", err)
	}
	return sessionID, nil
}

// recordStates drains the telemetry channel into the store, flushing in
// batches. It returns when the context is cancelled or the state listener
// terminates (observed as a closed channel).
func recordStates(ctx context.Context, store *storage.Store, sessionID int64, states <-chan tello.State, config *Config, logger *slog.Logger) error {
	ticker := time.NewTicker(config.Recording.FlushEvery())
	defer ticker.Stop()

	var batch []storage.Record
	var total int64

	flush := func(ctx context.Context) error {
		if err := store.StoreStates(ctx, sessionID, batch); err != nil {
			return fmt.Errorf("storing telemetry batch: %w", err)
		}
		total += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	defer func() {
		logger.Info("recording finished",
			slog.String("records", humanize.Comma(total)))
	}()

	for {
		select {
		case <-ctx.Done():
			// the run context is gone; flush the tail on its own context
			if err := flush(context.Background()); err != nil {
				return err
			}
			return ctx.Err()

		case state, ok := <-states:
			if !ok {
				// listener terminated; whatever is batched is the end of the flight
				return flush(context.Background())
			}
			batch = append(batch, storage.Record{Timestamp: time.Now(), State: state})
			if len(batch) >= config.Storage.MaxBatchSize {
				if err := flush(ctx); err != nil {
					return err
				}
			}

		case <-ticker.C:
			if err := flush(ctx); err != nil {
				return err
			}
		}
	}
}

// countVideo tallies the video stream without storing it. Runs until the
// video listener terminates.
func countVideo(frames <-chan tello.VideoFrame, logger *slog.Logger) {
	var count int64
	var bytes uint64
	for frame := range frames {
		count++
		bytes += uint64(len(frame.Data))
	}

	logger.Info("video stream ended",
		slog.String("frames", humanize.Comma(count)),
		slog.String("received", humanize.Bytes(bytes)))
}

func createStorage(config *StorageConfig) (*storage.Store, error) {
	dbPath := config.DataDirectory
	if dbPath == "" {
		dbPath = storageDir
	}
	if !filepath.IsAbs(dbPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dbPath = filepath.Join(wd, dbPath)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, err
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("tello_flight_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.New(dbPath), nil
}
