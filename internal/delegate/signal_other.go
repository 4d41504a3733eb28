//go:build !unix

package delegate

import (
	"os"
	"os/exec"
)

var forwardedSignals = []os.Signal{
	os.Interrupt,
}

// The console delivers Ctrl-C to the whole process group, so the child has
// seen the interrupt already; killing it is all that is left.
func interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}

// forward is a no-op: console control events already reach every process
// attached to the console.
func forward(p *os.Process, sig os.Signal) error {
	return nil
}

func exitCode(err *exec.ExitError) int {
	return err.ExitCode()
}
