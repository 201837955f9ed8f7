package tello

import (
	"errors"
	"testing"
)

func TestParseState(t *testing.T) {
	line := "roll:0;pitch:0;yaw:-3;h:50;bat:82;baro:-57.14;time:14;templ:58;temph:60;tof:71;vgx:0;vgy:0;vgz:1;agx:17.00;agy:-4.00;agz:-956.00;"

	state, err := ParseState(line)
	if err != nil {
		t.Fatalf("ParseState failed: %v", err)
	}

	if state.Battery != 82 {
		t.Errorf("expected battery 82, got %d", state.Battery)
	}
	if state.Height != 50 {
		t.Errorf("expected height 50, got %d", state.Height)
	}
	if state.Yaw != -3 {
		t.Errorf("expected yaw -3, got %d", state.Yaw)
	}
	if state.Barometer != -57.14 {
		t.Errorf("expected barometer -57.14, got %f", state.Barometer)
	}
	if state.Acceleration.Z != -956.0 {
		t.Errorf("expected acceleration.z -956.0, got %f", state.Acceleration.Z)
	}
	if state.Velocity.Z != 1 {
		t.Errorf("expected velocity.z 1, got %d", state.Velocity.Z)
	}
	if state.TimeOfFlight != 71 {
		t.Errorf("expected tof 71, got %d", state.TimeOfFlight)
	}
	if state.MotorTime != 14 {
		t.Errorf("expected motor time 14, got %d", state.MotorTime)
	}
	if state.TemperatureLow != 58 || state.TemperatureHigh != 60 {
		t.Errorf("expected temperatures 58/60, got %d/%d", state.TemperatureLow, state.TemperatureHigh)
	}
}

func TestParseState_UnrecognizedKeysIgnored(t *testing.T) {
	// The EDU firmware prepends mission pad fields; they must not fail the line
	line := "mid:-1;x:-100;y:-100;z:-100;bat:64;"

	state, err := ParseState(line)
	if err != nil {
		t.Fatalf("ParseState failed: %v", err)
	}
	if state.Battery != 64 {
		t.Errorf("expected battery 64, got %d", state.Battery)
	}
}

func TestParseState_MissingFieldsStayZero(t *testing.T) {
	state, err := ParseState("bat:50;")
	if err != nil {
		t.Fatalf("ParseState failed: %v", err)
	}
	if state.Roll != 0 || state.Height != 0 || state.Acceleration.X != 0 {
		t.Errorf("expected zero defaults, got %+v", state)
	}
}

func TestParseState_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"field without separator", "roll:1;pitch;yaw:2;"},
		{"non-numeric value", "bat:full;"},
		{"overflowing value", "bat:300;"},
		{"float where int expected", "h:1.5;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseState(tt.line)
			if err == nil {
				t.Fatalf("expected error for %q", tt.line)
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestParseState_EmptyLine(t *testing.T) {
	state, err := ParseState("")
	if err != nil {
		t.Fatalf("ParseState failed on empty line: %v", err)
	}
	if state != (State{}) {
		t.Errorf("expected zero state, got %+v", state)
	}
}
