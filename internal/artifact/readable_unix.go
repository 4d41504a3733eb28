//go:build unix

package artifact

import (
	"os"

	"golang.org/x/sys/unix"
)

func readable(name string) error {
	if err := unix.Access(name, unix.R_OK); err != nil {
		return &os.PathError{Op: "access", Path: name, Err: err}
	}
	return nil
}
