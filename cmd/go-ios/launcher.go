package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danielpaulus/go-ios-npm/internal/artifact"
	"github.com/danielpaulus/go-ios-npm/internal/delegate"
	"github.com/danielpaulus/go-ios-npm/internal/logging"
	"github.com/danielpaulus/go-ios-npm/internal/metaerr"
	"github.com/danielpaulus/go-ios-npm/internal/platform"
)

const (
	packageDirEnvVar = "GOIOS_PACKAGE_DIR"
	logLevelEnvVar   = "GOIOS_LOG_LEVEL"
)

type launcher struct {
	detector platform.Detector
	locator  *artifact.Locator
	delegate *delegate.Delegate

	getenv     func(string) string
	executable func() (string, error)
}

func newLauncher() *launcher {
	return &launcher{
		detector:   platform.NewDetector(),
		locator:    artifact.NewLocator(nil),
		delegate:   delegate.New(),
		getenv:     os.Getenv,
		executable: os.Executable,
	}
}

// run locates the binary for this host and runs it with args. The returned
// code is the child's exit code, or 1 if it could not be run.
func run(ctx context.Context, args []string, l *launcher) (int, error) {
	// stay quiet unless asked, stdout and stderr belong to the child
	level := l.getenv(logLevelEnvVar)
	if level == "" {
		level = "warn"
	}
	logging.Init(os.Stderr, "go-ios", level, "text")

	path, err := l.locate(ctx)
	if err != nil {
		slog.With("error", err).With(metaerr.GetMetadata(err)...).Debug("failed to locate binary")
		return 1, err
	}

	code, err := l.delegate.Run(ctx, path, args, nil, "")
	if err != nil {
		slog.With("error", err).With(metaerr.GetMetadata(err)...).Debug("failed to run binary")
		return 1, err
	}
	return code, nil
}

func (l *launcher) locate(ctx context.Context) (string, error) {
	pkgDir, err := l.packageDir()
	if err != nil {
		return "", err
	}

	d, err := artifact.Detect(ctx, l.detector)
	if err != nil {
		return "", err
	}

	loc, err := l.locator.Locate(d, filepath.Join(pkgDir, artifact.DistDir))
	if err != nil {
		return "", err
	}
	return loc.Path, nil
}

// packageDir returns $GOIOS_PACKAGE_DIR, or the closest directory above the
// launcher executable that has a dist directory.
func (l *launcher) packageDir() (string, error) {
	if dir := l.getenv(packageDirEnvVar); dir != "" {
		return dir, nil
	}

	exe, err := l.executable()
	if err != nil {
		return "", fmt.Errorf("find launcher executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	dir, err := findPackageDir(filepath.Dir(exe))
	if err != nil {
		return "", metaerr.WithMetadata(err, "executable", exe)
	}
	return dir, nil
}

func findPackageDir(start string) (string, error) {
	dir := start
	for {
		info, err := os.Stat(filepath.Join(dir, artifact.DistDir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s directory above %s", artifact.ErrBinaryNotFound, artifact.DistDir, start)
		}
		dir = parent
	}
}
