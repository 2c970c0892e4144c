// Package adapter provides backend adapters for Windows configuration surfaces
package adapter

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CmdResult captures the outcome of one child-process invocation
type CmdResult struct {
	Output   string
	ExitCode int
}

// Runner executes an external tool as an isolated child process with a
// bounded wait. A process that does not terminate within the timeout is
// killed and the call reported as an error, never left to hang the engine.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (CmdResult, error)
}

type execRunner struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewRunner creates a Runner with the given per-invocation timeout
func NewRunner(timeout time.Duration, logger *zap.Logger) Runner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &execRunner{timeout: timeout, logger: logger}
}

// Run executes the command and returns its combined output and exit code.
// A nonzero exit code is not an error here; callers classify it. The error
// return covers only could-not-run conditions: missing binary or timeout.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (CmdResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	out, err := cmd.CombinedOutput()
	result := CmdResult{Output: string(out)}

	if runCtx.Err() == context.DeadlineExceeded {
		r.logger.Warn("command timed out",
			zap.String("cmd", name),
			zap.Strings("args", args),
			zap.Duration("timeout", r.timeout))
		return result, fmt.Errorf("command %s timed out after %s", name, r.timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return result, fmt.Errorf("failed to run %s: %w", name, err)
		}
	}

	r.logger.Debug("command finished",
		zap.String("cmd", name),
		zap.Strings("args", args),
		zap.Int("exit_code", result.ExitCode),
		zap.String("output", truncate(result.Output, 200)))

	return result, nil
}

// outputIndicatesFailure reports whether tool output carries an error
// marker. Some netsh failures exit 0, so the exit code alone cannot be
// trusted.
func outputIndicatesFailure(output string) bool {
	lower := strings.ToLower(output)
	for _, marker := range []string{"error", "invalid", "incorrect"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
