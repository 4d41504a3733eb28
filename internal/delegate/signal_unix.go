//go:build unix

package delegate

import (
	"os"
	"os/exec"
	"syscall"
)

var forwardedSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}

func interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Signal(syscall.SIGINT)
}

func forward(p *os.Process, sig os.Signal) error {
	return p.Signal(sig)
}

// exitCode follows the shell convention of 128+n for children killed by
// signal n.
func exitCode(err *exec.ExitError) int {
	if status, ok := err.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return err.ExitCode()
}
