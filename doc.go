// Package tello is a client for the Ryze/DJI Tello EDU drone's UDP text
// protocol: a synchronous command channel, a broadcast telemetry channel,
// and a broadcast video channel, all reachable once the host has joined the
// drone's own WiFi network.
//
// The connection moves through three phases, each a distinct type, so that
// flight operations cannot be reached before the control channel exists:
//
//	drone := tello.New()
//
//	// wait until the host joins the drone's network (joining is up to you)
//	joined, err := drone.WaitForNetwork(ctx, "TELLO")
//
//	// bind the control channel and enter SDK command mode
//	conn, err := joined.Connect(ctx)
//
//	conn.TakeOff()
//	conn.TurnClockwise(360)
//	conn.Land()
//	conn.Disconnect()
//
// Telemetry and video are opt-in background listeners configured through
// Options; each delivers into an unbounded channel owned by the caller:
//
//	opts := tello.NewOptions()
//	states := opts.WithState()
//	conn, err := joined.ConnectWith(ctx, opts)
//	for s := range states {
//		fmt.Println(s.Battery)
//	}
//
// The transport is plain UDP: datagrams may be lost or reordered and the
// client does not compensate beyond the documented connect-time retry.
package tello
