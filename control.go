package tello

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// maxResponseSize bounds a single control response read.
	maxResponseSize = 256

	// forcedStopNotification is an asynchronous notification the drone
	// emits some time after a "stop" command. It can be read back in place
	// of a later command's real response, in which case the real response
	// is the next datagram. At most one such notification is ever pending.
	forcedStopNotification = "forced stop"
)

// control owns the command socket. The protocol has no request IDs, so at
// most one exchange may be in flight; the mutex serialises direct callers
// and the command relay against each other.
type control struct {
	mu     sync.Mutex
	conn   *net.UDPConn
	logger *slog.Logger
}

func (c *control) close() error {
	return c.conn.Close()
}

// sendRaw sends one ASCII command and performs exactly one receive, plus
// one more if the first read back the stray "forced stop" notification.
func (c *control) sendRaw(command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("send", slog.String("command", command))
	if _, err := c.conn.Write([]byte(command)); err != nil {
		return "", fmt.Errorf("sending %q: %w", command, err)
	}

	response, err := c.receive()
	if err != nil {
		return "", err
	}
	if response == forcedStopNotification {
		c.logger.Debug("discarding deferred notification", slog.String("notification", response))
		if response, err = c.receive(); err != nil {
			return "", err
		}
	}

	c.logger.Debug("received", slog.String("response", response))
	return response, nil
}

// sendExpectNothing sends a command the drone never acknowledges.
func (c *control) sendExpectNothing(command string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("send", slog.String("command", command))
	if _, err := c.conn.Write([]byte(command)); err != nil {
		return fmt.Errorf("sending %q: %w", command, err)
	}
	return nil
}

func (c *control) sendExpectOk(command string) error {
	response, err := c.sendRaw(command)
	if err != nil {
		return err
	}
	if response != "ok" {
		return responseToError(response)
	}
	return nil
}

func (c *control) sendValueExpectOk(command string, value int) error {
	return c.sendExpectOk(fmt.Sprintf("%s %d", command, value))
}

func (c *control) receive() (string, error) {
	buf := make([]byte, maxResponseSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		return "", fmt.Errorf("receiving response: %w", err)
	}
	if !utf8.Valid(buf[:n]) {
		return "", &DecodeError{Data: append([]byte(nil), buf[:n]...)}
	}
	return strings.TrimSpace(string(buf[:n])), nil
}

// query sends a command and parses its response. A parse failure surfaces
// as a ParseError carrying the raw response.
func query[T any](c *control, command string, parse func(string) (T, error)) (T, error) {
	var zero T

	response, err := c.sendRaw(command)
	if err != nil {
		return zero, err
	}

	v, err := parse(response)
	if err != nil {
		return zero, newParseError(response, err)
	}
	return v, nil
}
