package tello

import (
	"fmt"
	"strconv"
	"strings"
)

// Vector3 is a three-component vector. Velocity is reported in integer
// units, acceleration in floating point, hence the type parameter.
type Vector3[T int16 | float32] struct {
	X, Y, Z T
}

// State is one telemetry snapshot as broadcast by the drone on the state
// port. Every line from the drone produces one independent State; fields
// missing from a line keep their zero value for that snapshot only.
type State struct {
	Roll  int16 // degrees
	Pitch int16 // degrees
	Yaw   int16 // degrees

	Height    int16   // cm
	Barometer float32 // cm, barometric

	Battery uint8 // percent

	TimeOfFlight uint16 // cm, downward range finder
	MotorTime    uint16 // seconds the motors have run

	TemperatureLow  int16 // °C
	TemperatureHigh int16 // °C

	Velocity     Vector3[int16]
	Acceleration Vector3[float32]
}

// ParseState parses one telemetry line into a State.
//
// A line is a sequence of ";"-separated "key:value" fields, for example:
//
//	"pitch:0;roll:0;yaw:-3;vgx:0;vgy:0;vgz:1;templ:58;temph:60;tof:71;h:50;bat:82;baro:-57.14;time:14;agx:17.00;agy:-4.00;agz:-956.00;"
//
// Unrecognised keys are ignored. A field without a ":" separator, or a
// recognised field whose value does not parse, fails the whole line with a
// ParseError and no partial snapshot.
func ParseState(line string) (State, error) {
	var s State

	for _, field := range strings.Split(line, ";") {
		if field == "" {
			continue
		}

		key, value, found := strings.Cut(field, ":")
		if !found {
			return State{}, newParseError(field, fmt.Errorf("missing ':' separator"))
		}

		var err error
		switch key {
		case "roll":
			s.Roll, err = parseInt16(value)
		case "pitch":
			s.Pitch, err = parseInt16(value)
		case "yaw":
			s.Yaw, err = parseInt16(value)
		case "h":
			s.Height, err = parseInt16(value)
		case "baro":
			s.Barometer, err = parseFloat32(value)
		case "bat":
			s.Battery, err = parseUint8(value)
		case "tof":
			s.TimeOfFlight, err = parseUint16(value)
		case "time":
			s.MotorTime, err = parseUint16(value)
		case "templ":
			s.TemperatureLow, err = parseInt16(value)
		case "temph":
			s.TemperatureHigh, err = parseInt16(value)
		case "vgx":
			s.Velocity.X, err = parseInt16(value)
		case "vgy":
			s.Velocity.Y, err = parseInt16(value)
		case "vgz":
			s.Velocity.Z, err = parseInt16(value)
		case "agx":
			s.Acceleration.X, err = parseFloat32(value)
		case "agy":
			s.Acceleration.Y, err = parseFloat32(value)
		case "agz":
			s.Acceleration.Z, err = parseFloat32(value)
		}
		if err != nil {
			return State{}, newParseError(value, err)
		}
	}

	return s, nil
}

func parseInt16(s string) (int16, error) {
	v, err := strconv.ParseInt(s, 10, 16)
	return int16(v), err
}

func parseUint8(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	return uint8(v), err
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	return uint16(v), err
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}
