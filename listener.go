package tello

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/openflight/tello/internal/mpsc"
)

// listener owns one receive-only UDP socket and the goroutine draining it.
// Stop closes the socket, which aborts the in-flight receive; the loop then
// closes its outbound queue so the consumer sees end-of-stream. A decode or
// parse failure also ends the loop: one corrupt datagram terminates the
// listener rather than being skipped.
type listener struct {
	conn   *net.UDPConn
	logger *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
}

func newListener(port int, name string, logger *slog.Logger) (*listener, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("binding %s port %d: %w", name, port, err)
	}

	return &listener{
		conn:   conn,
		logger: logger.With(slog.String("listener", name)),
		done:   make(chan struct{}),
	}, nil
}

// Stop closes the socket and waits for the receive loop to exit. Safe to
// call more than once.
func (l *listener) Stop() {
	l.stopOnce.Do(func() { l.conn.Close() })
	<-l.done
}

func startStateListener(port int, queue *mpsc.Queue[State], logger *slog.Logger) (*listener, error) {
	l, err := newListener(port, "state", logger)
	if err != nil {
		return nil, err
	}
	go l.runState(queue)
	return l, nil
}

func (l *listener) runState(queue *mpsc.Queue[State]) {
	defer close(l.done)
	defer queue.Close()

	l.logger.Info("listening", slog.String("addr", l.conn.LocalAddr().String()))

	buf := make([]byte, 1024)
	for {
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				l.logger.Info("stopped")
			} else {
				l.logger.Error("receive failed", slog.String("error", err.Error()))
			}
			return
		}

		if !utf8.Valid(buf[:n]) {
			l.logger.Error("telemetry datagram is not valid UTF-8")
			return
		}

		line := strings.TrimSpace(string(buf[:n]))
		state, err := ParseState(line)
		if err != nil {
			l.logger.Error("bad telemetry line",
				slog.String("line", line),
				slog.String("error", err.Error()))
			return
		}

		queue.Send(state)
	}
}

func startVideoListener(port, maxChunkSize int, queue *mpsc.Queue[VideoFrame], logger *slog.Logger) (*listener, error) {
	l, err := newListener(port, "video", logger)
	if err != nil {
		return nil, err
	}
	go l.runVideo(maxChunkSize, queue)
	return l, nil
}

func (l *listener) runVideo(maxChunkSize int, queue *mpsc.Queue[VideoFrame]) {
	defer close(l.done)
	defer queue.Close()

	l.logger.Info("listening", slog.String("addr", l.conn.LocalAddr().String()))

	assembler := newChunkAssembler(maxChunkSize)
	chunk := make([]byte, maxChunkSize)
	for {
		n, _, err := l.conn.ReadFromUDP(chunk)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				l.logger.Info("stopped")
			} else {
				l.logger.Error("receive failed", slog.String("error", err.Error()))
			}
			return
		}

		if frame, ok := assembler.Add(chunk[:n]); ok {
			queue.Send(frame)
		}
	}
}
