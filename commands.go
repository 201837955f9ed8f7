package tello

import (
	"fmt"
	"strconv"
	"strings"
)

// TakeOff starts the motors and lifts the drone to around 80 cm.
func (d *ConnectedDrone) TakeOff() error {
	return d.ctrl.sendExpectOk("takeoff")
}

// Land descends and stops the motors.
func (d *ConnectedDrone) Land() error {
	return d.ctrl.sendExpectOk("land")
}

// StopAndHover halts any motion and hovers in place. The drone acknowledges
// with "ok" and later emits an asynchronous "forced stop" notification,
// which the control channel discards when it shows up.
func (d *ConnectedDrone) StopAndHover() error {
	return d.ctrl.sendExpectOk("stop")
}

// EmergencyStop cuts the motors immediately. The drone never acknowledges
// this command.
func (d *ConnectedDrone) EmergencyStop() error {
	return d.ctrl.sendExpectNothing("emergency")
}

// TurnClockwise rotates by degrees in the range 1-360. The range is
// enforced by the drone, not locally; a value outside it surfaces as
// ErrOutOfRange.
func (d *ConnectedDrone) TurnClockwise(degrees int) error {
	return d.ctrl.sendValueExpectOk("cw", degrees)
}

// TurnCounterClockwise rotates by degrees in the range 1-360.
func (d *ConnectedDrone) TurnCounterClockwise(degrees int) error {
	return d.ctrl.sendValueExpectOk("ccw", degrees)
}

// Movement commands translate by cm in the range 20-500, drone-enforced.

func (d *ConnectedDrone) MoveUp(cm int) error      { return d.ctrl.sendValueExpectOk("up", cm) }
func (d *ConnectedDrone) MoveDown(cm int) error    { return d.ctrl.sendValueExpectOk("down", cm) }
func (d *ConnectedDrone) MoveLeft(cm int) error    { return d.ctrl.sendValueExpectOk("left", cm) }
func (d *ConnectedDrone) MoveRight(cm int) error   { return d.ctrl.sendValueExpectOk("right", cm) }
func (d *ConnectedDrone) MoveForward(cm int) error { return d.ctrl.sendValueExpectOk("forward", cm) }
func (d *ConnectedDrone) MoveBack(cm int) error    { return d.ctrl.sendValueExpectOk("back", cm) }

// Flips may be refused by the drone when the battery is low; that shows up
// as a device-reported error, there is no local battery check.

func (d *ConnectedDrone) FlipLeft() error    { return d.ctrl.sendExpectOk("flip l") }
func (d *ConnectedDrone) FlipRight() error   { return d.ctrl.sendExpectOk("flip r") }
func (d *ConnectedDrone) FlipForward() error { return d.ctrl.sendExpectOk("flip f") }
func (d *ConnectedDrone) FlipBack() error    { return d.ctrl.sendExpectOk("flip b") }

// SetSpeed sets the cruise speed in cm/s, range 10-100.
func (d *ConnectedDrone) SetSpeed(speed int) error {
	return d.ctrl.sendValueExpectOk("speed", speed)
}

// StartVideo asks the drone to begin streaming video to the video port.
func (d *ConnectedDrone) StartVideo() error {
	return d.ctrl.sendExpectOk("streamon")
}

// StopVideo stops the video stream.
func (d *ConnectedDrone) StopVideo() error {
	return d.ctrl.sendExpectOk("streamoff")
}

// RemoteControl streams one stick update. Each axis is in -100..100. The
// drone never acknowledges rc commands, so this is safe to call at a high
// rate.
func (d *ConnectedDrone) RemoteControl(leftRight, forwardBack, upDown, yaw int) error {
	return d.ctrl.sendExpectNothing(
		fmt.Sprintf("rc %d %d %d %d", leftRight, forwardBack, upDown, yaw))
}

// SendCommand sends a raw SDK command and returns the trimmed response, for
// commands not covered by the typed operations.
func (d *ConnectedDrone) SendCommand(command string) (string, error) {
	return d.ctrl.sendRaw(command)
}

// Battery returns the charge percentage.
func (d *ConnectedDrone) Battery() (int, error) {
	return query(d.ctrl, "battery?", strconv.Atoi)
}

// Speed returns the current cruise speed in cm/s.
func (d *ConnectedDrone) Speed() (float64, error) {
	return query(d.ctrl, "speed?", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// FlightTime returns the accumulated motor-on time in seconds. Some
// firmware versions suffix the value with "s".
func (d *ConnectedDrone) FlightTime() (int, error) {
	return query(d.ctrl, "time?", func(s string) (int, error) {
		return strconv.Atoi(strings.TrimSuffix(s, "s"))
	})
}

// WifiSignalToNoiseRatio returns the drone-reported WiFi SNR.
func (d *ConnectedDrone) WifiSignalToNoiseRatio() (int, error) {
	return query(d.ctrl, "wifi?", strconv.Atoi)
}

// SerialNumber returns the drone's serial number.
func (d *ConnectedDrone) SerialNumber() (string, error) {
	return query(d.ctrl, "sn?", func(s string) (string, error) { return s, nil })
}

// SDKVersion returns the drone's SDK version string.
func (d *ConnectedDrone) SDKVersion() (string, error) {
	return query(d.ctrl, "sdk?", func(s string) (string, error) { return s, nil })
}

// CommandKind discriminates the Command variants consumed by the relay.
type CommandKind int

const (
	CommandTakeOff CommandKind = iota
	CommandLand
	CommandStopAndHover
	CommandEmergencyStop
	CommandRemoteControl
	CommandFlipLeft
	CommandFlipRight
	CommandFlipForward
	CommandFlipBack
)

// Command is one remote-control instruction fed through a command queue.
// The axis fields are only meaningful for CommandRemoteControl.
type Command struct {
	Kind CommandKind

	LeftRight   int
	ForwardBack int
	UpDown      int
	Yaw         int
}

// RemoteControlCommand builds a CommandRemoteControl value; each axis is in
// -100..100.
func RemoteControlCommand(leftRight, forwardBack, upDown, yaw int) Command {
	return Command{
		Kind:        CommandRemoteControl,
		LeftRight:   leftRight,
		ForwardBack: forwardBack,
		UpDown:      upDown,
		Yaw:         yaw,
	}
}

func (c Command) String() string {
	switch c.Kind {
	case CommandTakeOff:
		return "take off"
	case CommandLand:
		return "land"
	case CommandStopAndHover:
		return "stop and hover"
	case CommandEmergencyStop:
		return "emergency stop"
	case CommandRemoteControl:
		return fmt.Sprintf("remote control %d %d %d %d",
			c.LeftRight, c.ForwardBack, c.UpDown, c.Yaw)
	case CommandFlipLeft:
		return "flip left"
	case CommandFlipRight:
		return "flip right"
	case CommandFlipForward:
		return "flip forward"
	case CommandFlipBack:
		return "flip back"
	default:
		return fmt.Sprintf("unknown command %d", int(c.Kind))
	}
}

// Do performs the control call corresponding to one Command.
func (d *ConnectedDrone) Do(cmd Command) error {
	switch cmd.Kind {
	case CommandTakeOff:
		return d.TakeOff()
	case CommandLand:
		return d.Land()
	case CommandStopAndHover:
		return d.StopAndHover()
	case CommandEmergencyStop:
		return d.EmergencyStop()
	case CommandRemoteControl:
		return d.RemoteControl(cmd.LeftRight, cmd.ForwardBack, cmd.UpDown, cmd.Yaw)
	case CommandFlipLeft:
		return d.FlipLeft()
	case CommandFlipRight:
		return d.FlipRight()
	case CommandFlipForward:
		return d.FlipForward()
	case CommandFlipBack:
		return d.FlipBack()
	default:
		return fmt.Errorf("unknown command kind %d", int(cmd.Kind))
	}
}
