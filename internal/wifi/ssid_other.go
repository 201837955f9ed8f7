//go:build !linux && !darwin && !windows

package wifi

import "context"

func currentSSID(ctx context.Context) (string, error) {
	return "", ErrNoTooling
}
