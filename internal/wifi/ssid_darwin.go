//go:build darwin

package wifi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const airportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

// currentSSID queries the active SSID via the airport utility and falls
// back to networksetup when airport is unavailable.
func currentSSID(ctx context.Context) (string, error) {
	if _, err := os.Stat(airportPath); err == nil {
		out, err := exec.CommandContext(ctx, airportPath, "-I").Output()
		if err != nil {
			return "", fmt.Errorf("running airport: %w", err)
		}

		for _, line := range strings.Split(string(out), "\n") {
			key, value, found := strings.Cut(line, ":")
			if found && strings.TrimSpace(key) == "SSID" {
				return strings.TrimSpace(value), nil
			}
		}
		return "", nil // not associated
	}

	binPath, err := exec.LookPath("networksetup")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: neither airport nor networksetup available", ErrNoTooling)
		}
		return "", err
	}

	out, err := exec.CommandContext(ctx, binPath, "-getairportnetwork", "en0").Output()
	if err != nil {
		return "", fmt.Errorf("running networksetup: %w", err)
	}

	// "Current Wi-Fi Network: <ssid>" when associated
	if _, value, found := strings.Cut(string(out), ": "); found {
		return strings.TrimSpace(value), nil
	}
	return "", nil
}
