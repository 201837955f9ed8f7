//go:build linux

package wifi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// currentSSID queries the active SSID via iwgetid. iwgetid exits non-zero
// when the host is not associated, which is reported as an empty SSID.
func currentSSID(ctx context.Context) (string, error) {
	binPath, err := exec.LookPath("iwgetid")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: iwgetid not installed", ErrNoTooling)
		}
		return "", err
	}

	out, err := exec.CommandContext(ctx, binPath, "-r").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", nil // not associated
		}
		return "", fmt.Errorf("running iwgetid: %w", err)
	}

	return strings.TrimSpace(string(bytes.ToValidUTF8(out, nil))), nil
}
