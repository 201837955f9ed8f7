package tello

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/openflight/tello/internal/mpsc"
)

// sender returns a connection that sends datagrams to the listener's
// socket.
func sender(t *testing.T, l *listener) *net.UDPConn {
	t.Helper()

	port := l.conn.LocalAddr().(*net.UDPAddr).Port
	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port})
	if err != nil {
		t.Fatalf("dialing listener: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStateListener_DeliversSnapshots(t *testing.T) {
	queue := mpsc.New[State]()
	l, err := startStateListener(0, queue, discardLogger())
	if err != nil {
		t.Fatalf("starting state listener: %v", err)
	}
	defer l.Stop()

	conn := sender(t, l)
	if _, err = conn.Write([]byte("bat:82;h:50;\r\n")); err != nil {
		t.Fatalf("sending telemetry: %v", err)
	}

	select {
	case state := <-queue.Out():
		if state.Battery != 82 || state.Height != 50 {
			t.Errorf("unexpected state %+v", state)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestStateListener_MalformedLineTerminates(t *testing.T) {
	queue := mpsc.New[State]()
	l, err := startStateListener(0, queue, discardLogger())
	if err != nil {
		t.Fatalf("starting state listener: %v", err)
	}
	defer l.Stop()

	conn := sender(t, l)
	if _, err = conn.Write([]byte("bat:82;pitch;")); err != nil {
		t.Fatalf("sending telemetry: %v", err)
	}

	// one corrupt line ends the listener: the consumer sees end-of-stream
	// with no partial snapshot
	select {
	case state, ok := <-queue.Out():
		if ok {
			t.Fatalf("expected closed channel, got snapshot %+v", state)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not terminate on malformed line")
	}
}

func TestStateListener_StopClosesQueue(t *testing.T) {
	queue := mpsc.New[State]()
	l, err := startStateListener(0, queue, discardLogger())
	if err != nil {
		t.Fatalf("starting state listener: %v", err)
	}

	l.Stop()
	l.Stop() // idempotent

	select {
	case _, ok := <-queue.Out():
		if ok {
			t.Fatal("unexpected snapshot after Stop")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("queue not closed after Stop")
	}
}

func TestVideoListener_AssemblesFrames(t *testing.T) {
	const chunkSize = 16

	queue := mpsc.New[VideoFrame]()
	l, err := startVideoListener(0, chunkSize, queue, discardLogger())
	if err != nil {
		t.Fatalf("starting video listener: %v", err)
	}
	defer l.Stop()

	conn := sender(t, l)
	for _, chunk := range [][]byte{
		bytes.Repeat([]byte{0x11}, chunkSize),
		bytes.Repeat([]byte{0x22}, chunkSize),
		bytes.Repeat([]byte{0x33}, 5),
	} {
		if _, err = conn.Write(chunk); err != nil {
			t.Fatalf("sending chunk: %v", err)
		}
	}

	select {
	case frame := <-queue.Out():
		if len(frame.Data) != 2*chunkSize+5 {
			t.Errorf("expected %d-byte frame, got %d", 2*chunkSize+5, len(frame.Data))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no frame delivered")
	}
}
