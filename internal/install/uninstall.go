package install

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/danielpaulus/go-ios-npm/internal/metaerr"
)

// UninstallResult tells what Uninstall found.
type UninstallResult int

const (
	Removed UninstallResult = iota
	AlreadyAbsent
)

func (r UninstallResult) String() string {
	switch r {
	case Removed:
		return "removed"
	case AlreadyAbsent:
		return "already absent"
	default:
		return "unknown"
	}
}

// Uninstall removes the installed binary of t. A binary that is not there
// is not an error, and neither is a target without an install directory,
// since nothing can have been installed there. Other failures, e.g. missing
// permissions, are.
func (i *Installer) Uninstall(t Target) (UninstallResult, error) {
	if problems := t.validateName(); len(problems) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	if t.InstallDir == "" {
		slog.Info("no install directory, nothing to remove", "name", t.FileName())
		return AlreadyAbsent, nil
	}

	path := t.Path()
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("binary already absent", "path", path)
		return AlreadyAbsent, nil
	}
	if err == nil && info.IsDir() {
		return 0, metaerr.WithMetadata(
			fmt.Errorf("%w: %s is a directory", ErrRemoveFailed, path),
			"path", path,
		)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return AlreadyAbsent, nil
		}
		return 0, metaerr.WithMetadata(fmt.Errorf("%w: %w", ErrRemoveFailed, err), "path", path)
	}

	slog.Info("removed binary", "path", path)
	return Removed, nil
}
