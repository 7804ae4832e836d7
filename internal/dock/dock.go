// Package dock restarts the macOS Dock so it redraws changed app icons.
package dock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmgilman/iconkeep/internal/exec"
)

// refreshTimeout bounds the killall call.
const refreshTimeout = 10 * time.Second

// ErrUnavailable is returned when killall cannot be found.
var ErrUnavailable = errors.New("killall not available")

// Refresher restarts the Dock process.
type Refresher struct {
	exec exec.Executor
}

// NewRefresher creates a Refresher that runs commands through e.
func NewRefresher(e exec.Executor) *Refresher {
	return &Refresher{exec: e}
}

// Refresh kills the Dock; launchd starts it again with a fresh icon cache.
// A Dock that is not running is not an error.
func (r *Refresher) Refresh(ctx context.Context) error {
	bin, err := r.exec.LookPath("killall")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	result, err := r.exec.Run(ctx, &exec.RunOptions{
		Name:    bin,
		Args:    []string{"Dock"},
		Timeout: refreshTimeout,
	})
	if err == nil {
		return nil
	}
	if result != nil && strings.Contains(string(result.Stderr), "No matching processes") {
		return nil
	}

	if result != nil && len(result.Stderr) > 0 {
		return fmt.Errorf("restart Dock: %s: %w", strings.TrimSpace(string(result.Stderr)), err)
	}
	return fmt.Errorf("restart Dock: %w", err)
}
