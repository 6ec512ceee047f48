// Package helper spawns the external trim helper binary against a target
// process and turns its line-oriented stdout into a typed outcome. The
// helper runs in its own security context, so it can succeed where the
// in-process attempt was denied.
package helper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"

	"github.com/genpipe/memtrim/api"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSpawnFailed signals the helper process could not be started.
	ErrSpawnFailed = errors.New("failed to spawn trim helper")

	// ErrTimeout signals the helper did not exit within the configured
	// wait; it has been forcibly terminated and its output discarded.
	ErrTimeout = errors.New("trim helper timed out")

	// ErrParseFailed signals the helper exited cleanly but its stdout did
	// not contain the expected fields.
	ErrParseFailed = errors.New("failed to parse trim helper output")
)

// ExitError reports a helper that ran but exited nonzero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("trim helper failed with exit code %d", e.Code)
}

// Runner launches the helper binary with a bounded wait.
type Runner struct {
	// Path of the helper binary. Empty means Locate().
	Path string
}

// TrimRemote runs the helper against pid. Pid zero asks the helper to
// auto-detect the worker process. The wait is bounded by timeout (falling
// back to api.DefaultHelperTimeout); on expiry the helper is killed.
func (r Runner) TrimRemote(ctx context.Context, pid int32, timeout time.Duration) (api.HelperOutcome, error) {
	var outcome api.HelperOutcome

	path := r.Path
	if path == "" {
		var err error
		path, err = Locate()
		if err != nil {
			return outcome, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
		}
	}

	if timeout <= 0 {
		timeout = api.DefaultHelperTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"--auto"}
	if pid != 0 {
		args = []string{"--pid", strconv.Itoa(int(pid))}
	}
	cmd := exec.CommandContext(ctx, path, args...)
	// Give the process a moment to flush output after the kill signal.
	cmd.WaitDelay = time.Second

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return outcome, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return outcome, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return outcome, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&stdout, stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&stderr, stderrPipe)
		return err
	})
	copyErr := g.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() == context.DeadlineExceeded {
		return outcome, ErrTimeout
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return outcome, &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return outcome, fmt.Errorf("failed to wait for trim helper: %w", waitErr)
	}
	if copyErr != nil {
		return outcome, fmt.Errorf("failed to read trim helper output: %w", copyErr)
	}

	outcome, err = api.DecodeHelperOutcome(&stdout)
	if err != nil {
		return outcome, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return outcome, nil
}
