package tello

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkNotJoined is returned when an operation needs the drone's
	// WiFi network and the host is not associated with it.
	ErrNetworkNotJoined = errors.New("drone WiFi network not joined")

	// ErrNonSpecific is returned when the drone rejects a command with the
	// literal "error" response and gives no further detail.
	ErrNonSpecific = errors.New("drone reported an unspecified error")

	// ErrOutOfRange is returned when the drone rejects a command argument
	// with the literal "out of range" response.
	ErrOutOfRange = errors.New("drone reported argument out of range")
)

// ResponseError is returned when the drone answers a command with text that
// is neither "ok" nor one of the recognised error sentinels. Response holds
// the trimmed text as received.
type ResponseError struct {
	Response string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected drone response %q", e.Response)
}

// DecodeError is returned when a datagram from the drone is not valid UTF-8.
type DecodeError struct {
	Data []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("response is not valid UTF-8: % x", e.Data)
}

// ParseError is returned when a well-formed response or telemetry field
// cannot be parsed into its expected type.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q: %s", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(input string, err error) *ParseError {
	return &ParseError{Input: input, Err: err}
}

// responseToError maps a trimmed not-ok control response onto the error
// taxonomy. The two sentinel texts come from the drone SDK; anything else
// is carried verbatim in a ResponseError.
func responseToError(response string) error {
	switch response {
	case "error":
		return ErrNonSpecific
	case "out of range":
		return ErrOutOfRange
	default:
		return &ResponseError{Response: response}
	}
}
