package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/openflight/tello"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDrone answers control datagrams on the loopback. Every command gets a
// reply so no query can block the recorder.
func fakeDrone(t *testing.T) *net.UDPAddr {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("binding fake drone socket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 1024)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}

			var reply string
			switch string(buf[:n]) {
			case "battery?":
				reply = "82"
			case "sn?":
				reply = "0TQZK7TEST"
			case "sdk?":
				reply = "30"
			default:
				reply = "ok"
			}
			if _, err := conn.WriteToUDP([]byte(reply), addr); err != nil {
				return
			}
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr)
}

// A cancelled run context must bring the whole recorder down, video counter
// included: the video channel only closes once the drone disconnects, so
// disconnecting must come before waiting on the counter.
func TestRun_CancellationStopsVideoRecording(t *testing.T) {
	addr := fakeDrone(t)

	prev := newOptions
	newOptions = func() *tello.Options {
		opts := tello.NewOptions()
		opts.LocalControlAddr = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}
		opts.StatePort = 0 // ephemeral; nobody sends to them
		opts.VideoPort = 0
		return opts
	}
	defer func() { newOptions = prev }()

	config := &Config{
		Network: NetworkConfig{
			AssumeJoined: true,
			DroneHost:    "127.0.0.1",
			ControlPort:  addr.Port,
		},
		Recording: RecordingConfig{Video: true, FlushInterval: 0.05},
		Storage:   StorageConfig{DataDirectory: t.TempDir(), MaxBatchSize: 5},
	}

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- Run(ctx, config, discardLogger()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled from Run, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestCreateStorage_AbsoluteDataDirectory(t *testing.T) {
	dir := t.TempDir()

	store, err := createStorage(&StorageConfig{DataDirectory: dir})
	if err != nil {
		t.Fatalf("createStorage failed: %v", err)
	}
	defer store.Close()

	if _, err = store.CreateSession(context.Background(), "", ""); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading data directory: %v", err)
	}
	if len(entries) == 0 {
		t.Error("expected a database file in the absolute data directory")
	}
}
