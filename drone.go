package tello

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/openflight/tello/internal/mpsc"
	"github.com/openflight/tello/internal/wifi"
)

const (
	// associateRetryInterval is how long Connect sleeps between UDP
	// association attempts. There is no attempt limit: an unreachable drone
	// blocks Connect until the context is cancelled.
	associateRetryInterval = 100 * time.Millisecond

	// lowBatteryThreshold is the charge percentage below which Connect
	// logs a warning.
	lowBatteryThreshold = 10
)

// networkPollInterval is how often WaitForNetwork polls the joiner. A
// variable so tests can shorten the wait.
var networkPollInterval = time.Second

// Joiner reports whether the host is associated with a WiFi network whose
// SSID starts with the given prefix. The default implementation shells out
// to platform tools; tests and embedded callers supply their own.
type Joiner interface {
	IsAssociatedWithPrefix(ctx context.Context, prefix string) (bool, error)
}

// Drone is a drone connection in its initial phase: the host may not even
// be on the drone's WiFi network yet. Each lifecycle transition returns the
// next phase as a distinct type, so operations that need a live control
// socket are not expressible before Connect has succeeded.
type Drone struct{}

// New returns a drone connection in the no-network phase.
func New() *Drone {
	return &Drone{}
}

// WaitForNetwork blocks until the host joins a WiFi network whose SSID
// starts with ssidPrefix, as reported by the platform WiFi shim. Joining
// the network is not automatic; how it happens is up to the caller.
func (d *Drone) WaitForNetwork(ctx context.Context, ssidPrefix string) (*JoinedDrone, error) {
	return d.WaitForNetworkUsing(ctx, ssidPrefix, wifi.New())
}

// WaitForNetworkUsing is WaitForNetwork with a caller-supplied association
// predicate, polled once per second until it reports true.
func (d *Drone) WaitForNetworkUsing(ctx context.Context, ssidPrefix string, joiner Joiner) (*JoinedDrone, error) {
	for {
		ok, err := joiner.IsAssociatedWithPrefix(ctx, ssidPrefix)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNetworkNotJoined, err)
		}
		if ok {
			return &JoinedDrone{}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(networkPollInterval):
		}
	}
}

// AssumeNetwork skips the association check, for callers that are already
// on the drone's network.
func (d *Drone) AssumeNetwork() *JoinedDrone {
	return &JoinedDrone{}
}

// JoinedDrone is a drone connection whose host is on the drone's network
// but has not yet established the control channel.
type JoinedDrone struct{}

// Connect establishes the control channel with default options.
func (j *JoinedDrone) Connect(ctx context.Context) (*ConnectedDrone, error) {
	return j.ConnectWith(ctx, NewOptions())
}

// ConnectWith binds the local control port, associates the socket with the
// drone's command address (retrying every 100ms for as long as the context
// allows), puts the drone in SDK command mode, checks the battery, and
// starts whatever listeners the options requested.
func (j *JoinedDrone) ConnectWith(ctx context.Context, opts *Options) (*ConnectedDrone, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	droneAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(opts.Host, strconv.Itoa(opts.ControlPort)))
	if err != nil {
		return nil, fmt.Errorf("resolving drone address: %w", err)
	}

	localAddr := opts.LocalControlAddr
	if localAddr == nil {
		localAddr = &net.UDPAddr{Port: opts.ControlPort}
	}

	dial := opts.dial
	if dial == nil {
		dial = func(laddr, raddr *net.UDPAddr) (*net.UDPConn, error) {
			return net.DialUDP("udp", laddr, raddr)
		}
	}

	var conn *net.UDPConn
	for attempt := 1; ; attempt++ {
		if conn, err = dial(localAddr, droneAddr); err == nil {
			break
		}

		logger.Warn("association attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(associateRetryInterval):
		}
	}

	d := &ConnectedDrone{
		opts:   opts,
		logger: logger,
		ctrl: &control{
			conn:   conn,
			logger: logger.With(slog.String("channel", "control")),
		},
	}

	if err = d.ctrl.sendExpectOk("command"); err != nil {
		d.ctrl.close()
		return nil, fmt.Errorf("entering command mode: %w", err)
	}

	battery, err := d.Battery()
	if err != nil {
		d.ctrl.close()
		return nil, fmt.Errorf("querying battery: %w", err)
	}
	if battery < lowBatteryThreshold {
		logger.Warn("battery low", slog.Int("battery", battery))
	} else {
		logger.Info("connected", slog.Int("battery", battery))
	}

	if err = d.startListeners(); err != nil {
		d.stopListeners()
		d.ctrl.close()
		return nil, err
	}

	return d, nil
}

// ConnectedDrone is a live control-channel connection. All flight
// operations hang off this type.
type ConnectedDrone struct {
	opts   *Options
	logger *slog.Logger
	ctrl   *control

	stateListener *listener
	videoListener *listener
	relayDone     chan error
}

func (d *ConnectedDrone) startListeners() (err error) {
	defer func() {
		if err != nil {
			d.closeUnstartedQueues()
		}
	}()

	if q := d.opts.stateQueue; q != nil {
		if d.stateListener, err = startStateListener(d.opts.StatePort, q, d.logger); err != nil {
			return err
		}
	}
	if q := d.opts.videoQueue; q != nil {
		if d.videoListener, err = startVideoListener(d.opts.VideoPort, d.opts.MaxChunkSize, q, d.logger); err != nil {
			return err
		}
	}
	if q := d.opts.commandQueue; q != nil {
		d.relayDone = make(chan error, 1)
		go d.runRelay(q)
	}

	return nil
}

// closeUnstartedQueues closes every attached queue whose listener never
// started. A running listener owns its queue and closes it on stop; without
// this a consumer already ranging over a never-started queue would block
// forever after a partial startup failure.
func (d *ConnectedDrone) closeUnstartedQueues() {
	if q := d.opts.stateQueue; q != nil && d.stateListener == nil {
		q.Close()
	}
	if q := d.opts.videoQueue; q != nil && d.videoListener == nil {
		q.Close()
	}
	if q := d.opts.commandQueue; q != nil && d.relayDone == nil {
		q.Close()
	}
}

func (d *ConnectedDrone) stopListeners() {
	if d.stateListener != nil {
		d.stateListener.Stop()
		d.stateListener = nil
	}
	if d.videoListener != nil {
		d.videoListener.Stop()
		d.videoListener = nil
	}
}

// RelayDone reports the command relay's completion: nil after the producer
// closes the command queue, or the first control-call error, which ends the
// relay. It returns nil if no relay was requested.
func (d *ConnectedDrone) RelayDone() <-chan error {
	return d.relayDone
}

func (d *ConnectedDrone) runRelay(queue *mpsc.Queue[Command]) {
	for cmd := range queue.Out() {
		if err := d.Do(cmd); err != nil {
			d.logger.Error("relay stopped",
				slog.String("command", cmd.String()),
				slog.String("error", err.Error()))
			d.relayDone <- err
			return
		}
	}
	d.relayDone <- nil
}

// Disconnect stops any running listeners, closes the control socket, and
// returns the connection to the network-joined phase. In-flight listener
// receives are abandoned; consumers observe closed channels. A relay that
// is still being fed will fail on its next command.
func (d *ConnectedDrone) Disconnect() *JoinedDrone {
	d.stopListeners()
	if err := d.ctrl.close(); err != nil {
		d.logger.Warn("closing control socket", slog.String("error", err.Error()))
	}
	d.logger.Info("disconnected")
	return &JoinedDrone{}
}
