package tello

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDrone answers control datagrams on a loopback socket. The handler
// returns the datagrams to send back for one received command; replies may
// contain arbitrary bytes to simulate firmware corruption.
func fakeDrone(t *testing.T, handler func(command string) []string) *net.UDPAddr {
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
			for _, reply := range handler(string(buf[:n])) {
				if _, err := conn.WriteToUDP([]byte(reply), addr); err != nil {
					return
				}
			}
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr)
}

func testControl(t *testing.T, handler func(command string) []string) *control {
	t.Helper()

	conn, err := net.DialUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, fakeDrone(t, handler))
	if err != nil {
		t.Fatalf("dialing fake drone: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &control{conn: conn, logger: discardLogger()}
}

func TestControl_SendValueExpectOk(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, err error)
	}{
		{"ok succeeds", "ok", func(t *testing.T, err error) {
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
		}},
		{"out of range sentinel", "out of range", func(t *testing.T, err error) {
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("expected ErrOutOfRange, got %v", err)
			}
		}},
		{"error sentinel", "error", func(t *testing.T, err error) {
			if !errors.Is(err, ErrNonSpecific) {
				t.Fatalf("expected ErrNonSpecific, got %v", err)
			}
		}},
		{"other text", "downvoted", func(t *testing.T, err error) {
			var respErr *ResponseError
			if !errors.As(err, &respErr) {
				t.Fatalf("expected ResponseError, got %v", err)
			}
			if respErr.Response != "downvoted" {
				t.Fatalf("expected raw response 'downvoted', got %q", respErr.Response)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCommand string
			c := testControl(t, func(command string) []string {
				gotCommand = command
				return []string{tt.response}
			})

			err := c.sendValueExpectOk("speed", 50)
			if gotCommand != "speed 50" {
				t.Errorf("expected request 'speed 50', got %q", gotCommand)
			}
			tt.check(t, err)
		})
	}
}

func TestControl_ForcedStopNotificationDiscarded(t *testing.T) {
	c := testControl(t, func(command string) []string {
		if command == "stop" {
			// the stray notification from an earlier stop arrives first,
			// the real response right behind it
			return []string{"forced stop", "ok"}
		}
		return []string{"ok"}
	})

	response, err := c.sendRaw("stop")
	if err != nil {
		t.Fatalf("sendRaw failed: %v", err)
	}
	if response != "ok" {
		t.Fatalf("expected the second receive 'ok', got %q", response)
	}
}

func TestControl_ResponseTrimmed(t *testing.T) {
	c := testControl(t, func(string) []string {
		return []string{"ok\r\n"}
	})

	if err := c.sendExpectOk("takeoff"); err != nil {
		t.Fatalf("expected trimmed 'ok' to succeed, got %v", err)
	}
}

func TestControl_InvalidUTF8Response(t *testing.T) {
	c := testControl(t, func(string) []string {
		return []string{"\xff\xfe\xfd"}
	})

	_, err := c.sendRaw("battery?")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestControl_Query(t *testing.T) {
	c := testControl(t, func(command string) []string {
		switch command {
		case "battery?":
			return []string{"82"}
		case "speed?":
			return []string{"100.0"}
		case "time?":
			return []string{"14s"}
		default:
			return []string{"unknown command"}
		}
	})

	d := &ConnectedDrone{ctrl: c, logger: discardLogger(), opts: NewOptions()}

	battery, err := d.Battery()
	if err != nil || battery != 82 {
		t.Errorf("Battery() = %d, %v; want 82, nil", battery, err)
	}

	speed, err := d.Speed()
	if err != nil || speed != 100.0 {
		t.Errorf("Speed() = %f, %v; want 100.0, nil", speed, err)
	}

	flightTime, err := d.FlightTime()
	if err != nil || flightTime != 14 {
		t.Errorf("FlightTime() = %d, %v; want 14, nil", flightTime, err)
	}
}

func TestControl_QueryParseFailure(t *testing.T) {
	c := testControl(t, func(string) []string {
		return []string{"not a number"}
	})
	d := &ConnectedDrone{ctrl: c, logger: discardLogger(), opts: NewOptions()}

	_, err := d.Battery()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Input != "not a number" {
		t.Errorf("ParseError should carry the raw response, got %q", parseErr.Input)
	}
}

func TestControl_ExpectNothingDoesNotReceive(t *testing.T) {
	received := make(chan string, 1)
	c := testControl(t, func(command string) []string {
		received <- command
		return nil // the drone never acknowledges rc/emergency
	})
	d := &ConnectedDrone{ctrl: c, logger: discardLogger(), opts: NewOptions()}

	if err := d.RemoteControl(-10, 0, 0, 50); err != nil {
		t.Fatalf("RemoteControl failed: %v", err)
	}
	if got := <-received; got != "rc -10 0 0 50" {
		t.Errorf("expected 'rc -10 0 0 50', got %q", got)
	}

	if err := d.EmergencyStop(); err != nil {
		t.Fatalf("EmergencyStop failed: %v", err)
	}
	if got := <-received; got != "emergency" {
		t.Errorf("expected 'emergency', got %q", got)
	}
}
