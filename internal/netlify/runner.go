package netlify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result is what a finished command printed and how it exited.
type Result struct {
	Output   string
	ExitCode int
}

// OK reports a zero exit status.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Runner executes external commands. An error means the command could not be
// run at all; a command that ran and failed is reported through ExitCode.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec, optionally bounded by Timeout.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()
	cmd.Dir = dir

	slog.Debug("Running command", "cmd", name, "args", strings.Join(args, " "), "dir", dir)
	out, err := cmd.CombinedOutput()
	res := Result{Output: string(out)}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			return res, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return res, nil
	}
	return res, fmt.Errorf("failed to run %s: %w", name, err)
}
