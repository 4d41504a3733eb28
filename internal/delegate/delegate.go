// Package delegate runs a binary in place of the current process: the child
// shares the parent's standard streams, receives the parent's termination
// signals and its exit code becomes the parent's.
package delegate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/danielpaulus/go-ios-npm/internal/metaerr"
)

var ErrSpawnFailed = errors.New("spawn failed")

// DefaultWaitDelay is how long a cancelled child may take to exit after
// being interrupted before it is killed.
const DefaultWaitDelay = 5 * time.Second

// Delegate spawns child processes.
type Delegate struct {
	// Stdin, Stdout and Stderr default to the parent's streams. *os.File
	// values are handed to the child as they are, without copying.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Signals are forwarded to the child while it runs.
	Signals []os.Signal

	WaitDelay time.Duration
}

// New returns a Delegate wired to the parent's standard streams.
func New() *Delegate {
	return &Delegate{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Signals:   forwardedSignals,
		WaitDelay: DefaultWaitDelay,
	}
}

// Run starts path with args, waits for it and returns its exit code.
// A nil env passes the parent's environment; an empty cwd the parent's
// working directory. If ctx is cancelled the child is interrupted, and killed
// after WaitDelay.
//
// An error is returned only if the child could not be started (wrapping
// ErrSpawnFailed, with exit code -1) or could not be waited for.
func (d *Delegate) Run(ctx context.Context, path string, args []string, env []string, cwd string) (int, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = env
	cmd.Dir = cwd
	cmd.Stdin = d.Stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	cmd.Cancel = func() error {
		return interrupt(cmd.Process)
	}
	cmd.WaitDelay = d.WaitDelay

	// subscribe before the child exists so no signal slips through
	sigs := make(chan os.Signal, 1)
	if len(d.Signals) > 0 {
		signal.Notify(sigs, d.Signals...)
	}
	defer signal.Stop(sigs)

	if err := cmd.Start(); err != nil {
		return -1, metaerr.WithMetadata(
			fmt.Errorf("%w: %w", ErrSpawnFailed, err),
			"path", path,
		)
	}
	slog.Debug("started child process", "path", path, "pid", cmd.Process.Pid)

	done := make(chan struct{})
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for {
			select {
			case sig := <-sigs:
				slog.Debug("forwarding signal", "signal", sig, "pid", cmd.Process.Pid)
				if err := forward(cmd.Process, sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
					slog.Warn("failed to forward signal", "signal", sig, "error", err)
				}
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)
	<-forwarded

	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitCode(exitErr)
		slog.Debug("child process exited", "path", path, "code", code)
		return code, nil
	}

	return -1, metaerr.WithMetadata(fmt.Errorf("wait for child process: %w", err), "path", path)
}
