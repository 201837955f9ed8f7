// Package wifi implements the WiFi association predicate used while
// waiting to join a drone's network. Detection is best-effort and
// platform-specific: it shells out to whatever association tool the OS
// ships rather than talking to the wireless stack directly.
package wifi

import (
	"context"
	"errors"
	"strings"
)

// ErrNoTooling is returned when no usable WiFi query tool is installed.
var ErrNoTooling = errors.New("no WiFi query tool found")

// Shim reports the host's current WiFi association.
type Shim struct{}

// New returns the platform shim.
func New() *Shim {
	return &Shim{}
}

// IsAssociatedWithPrefix reports whether the active network's SSID starts
// with prefix. A host that is not associated with any network reports
// false; only a failure to query at all is an error.
func (s *Shim) IsAssociatedWithPrefix(ctx context.Context, prefix string) (bool, error) {
	ssid, err := currentSSID(ctx)
	if err != nil {
		return false, err
	}
	return ssid != "" && strings.HasPrefix(ssid, prefix), nil
}
