//go:build windows

package wifi

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// currentSSID queries the active SSID via netsh.
func currentSSID(ctx context.Context) (string, error) {
	binPath, err := exec.LookPath("netsh")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: netsh not available", ErrNoTooling)
		}
		return "", err
	}

	out, err := exec.CommandContext(ctx, binPath, "wlan", "show", "interfaces").Output()
	if err != nil {
		return "", fmt.Errorf("running netsh: %w", err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		key, value, found := strings.Cut(line, ":")
		if found && strings.TrimSpace(key) == "SSID" {
			return strings.TrimSpace(value), nil
		}
	}
	return "", nil // not associated
}
