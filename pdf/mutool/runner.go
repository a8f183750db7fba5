package mutool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single mutool invocation
const DefaultTimeout = 60 * time.Second

// CommandRunner runs an external command and returns its standard output
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec under a per-call timeout
type ExecRunner struct {
	Timeout time.Duration
}

// ErrTimeout is returned when a command exceeds its timeout
var ErrTimeout = errors.New("command timed out")

// Run executes name with args. Standard error is folded into the returned
// error so script failures stay readable.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	err := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("command failed: %w: %s", err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("command failed: %w", err)
	}
	return stdout.Bytes(), nil
}
