package tello

import (
	"io"
	"log/slog"
	"net"

	"github.com/openflight/tello/internal/mpsc"
)

const (
	// DefaultDroneHost is the drone's address on its own WiFi network.
	DefaultDroneHost = "192.168.10.1"

	// DefaultControlPort is the UDP port used on both ends of the control
	// channel: the local bind port and the drone's command port.
	DefaultControlPort = 8889

	// DefaultStatePort is the local UDP port the drone broadcasts telemetry to.
	DefaultStatePort = 8890

	// DefaultVideoPort is the local UDP port the drone streams video to.
	DefaultVideoPort = 11111

	// DefaultMaxChunkSize is the largest video datagram the drone sends. A
	// datagram shorter than this ends the current frame.
	DefaultMaxChunkSize = 1460
)

// Options configures a drone connection. The zero value is not usable;
// start from NewOptions and adjust.
type Options struct {
	// Host is the drone's address, without port.
	Host string

	// ControlPort is used both as the local bind port and as the drone's
	// command port, per the SDK convention.
	ControlPort int

	// StatePort and VideoPort are local receive-only ports.
	StatePort int
	VideoPort int

	// MaxChunkSize is the video chunk size; a shorter datagram terminates
	// the frame being assembled.
	MaxChunkSize int

	// Logger receives connection and listener events. Defaults to discard.
	Logger *slog.Logger

	// LocalControlAddr overrides the local control bind address. Nil binds
	// the wildcard address on ControlPort; a zero port picks an ephemeral
	// one, which is how drone and client can share one host.
	LocalControlAddr *net.UDPAddr

	stateQueue   *mpsc.Queue[State]
	videoQueue   *mpsc.Queue[VideoFrame]
	commandQueue *mpsc.Queue[Command]

	// dial overrides UDP association, for tests exercising the retry loop.
	dial func(laddr, raddr *net.UDPAddr) (*net.UDPConn, error)
}

// NewOptions returns Options populated with the SDK defaults and a discard
// logger.
func NewOptions() *Options {
	return &Options{
		Host:         DefaultDroneHost,
		ControlPort:  DefaultControlPort,
		StatePort:    DefaultStatePort,
		VideoPort:    DefaultVideoPort,
		MaxChunkSize: DefaultMaxChunkSize,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithState requests telemetry updates. Connect will start the state
// listener, and every received snapshot is delivered on the returned
// channel. The channel is unbounded upstream and is closed when the
// listener stops.
func (o *Options) WithState() <-chan State {
	o.stateQueue = mpsc.New[State]()
	return o.stateQueue.Out()
}

// WithVideo requests the video stream. Connect will start the video
// listener; assembled frames are delivered on the returned channel, which
// is closed when the listener stops.
func (o *Options) WithVideo() <-chan VideoFrame {
	o.videoQueue = mpsc.New[VideoFrame]()
	return o.videoQueue.Out()
}

// WithCommands installs a command relay. Connect will start a consumer that
// performs one control call per Command sent on the returned channel.
// Closing the returned queue ends the relay; see ConnectedDrone.RelayDone.
func (o *Options) WithCommands() *CommandQueue {
	o.commandQueue = mpsc.New[Command]()
	return &CommandQueue{q: o.commandQueue}
}

// CommandQueue is the producer end of a command relay queue.
type CommandQueue struct {
	q *mpsc.Queue[Command]
}

// Send enqueues one command for the relay. It never blocks.
func (cq *CommandQueue) Send(cmd Command) { cq.q.Send(cmd) }

// Close signals that no further commands will be sent; the relay finishes
// the backlog and stops.
func (cq *CommandQueue) Close() { cq.q.Close() }
