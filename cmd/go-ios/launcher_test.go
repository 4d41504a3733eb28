package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielpaulus/go-ios-npm/internal/artifact"
	"github.com/danielpaulus/go-ios-npm/internal/delegate"
	"github.com/danielpaulus/go-ios-npm/internal/platform"
)

const helperEnvVar = "GOIOS_LAUNCHER_HELPER"

// TestMain lets the test binary stand in for the distributed ios binary.
func TestMain(m *testing.M) {
	if os.Getenv(helperEnvVar) != "" {
		fmt.Fprintf(os.Stdout, "ios %s\n", strings.Join(os.Args[1:], " "))
		code := 0
		if len(os.Args) > 2 && os.Args[1] == "exit" {
			code, _ = strconv.Atoi(os.Args[2])
		}
		os.Exit(code)
	}
	os.Exit(m.Run())
}

// setupDist copies the test binary to the dist location for this host.
func setupDist(t *testing.T) string {
	t.Helper()

	d, err := artifact.Detect(context.Background(), platform.RuntimeDetector{})
	if err != nil {
		t.Skipf("host outside the artifact matrix: %v", err)
	}

	root := t.TempDir()
	dst := artifact.Path(filepath.Join(root, artifact.DistDir), d)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))

	src, err := os.Open(os.Args[0])
	require.NoError(t, err)
	defer src.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY, 0o755)
	require.NoError(t, err)
	_, err = io.Copy(out, src)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	return root
}

func newTestLauncher(pkgDir string, stdout io.Writer) *launcher {
	return &launcher{
		detector: platform.RuntimeDetector{},
		locator:  artifact.NewLocator(nil),
		delegate: &delegate.Delegate{Stdout: stdout, Stderr: io.Discard, WaitDelay: time.Second},
		getenv: func(key string) string {
			if key == packageDirEnvVar {
				return pkgDir
			}
			return ""
		},
		executable: func() (string, error) {
			return "", errors.New("not used")
		},
	}
}

func TestRun(t *testing.T) {
	root := setupDist(t)
	t.Setenv(helperEnvVar, "1")

	var stdout bytes.Buffer
	code, err := run(context.Background(), []string{"list", "--details"}, newTestLauncher(root, &stdout))
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "ios list --details\n", stdout.String())
}

func TestRunExitCode(t *testing.T) {
	root := setupDist(t)
	t.Setenv(helperEnvVar, "1")

	code, err := run(context.Background(), []string{"exit", "7"}, newTestLauncher(root, io.Discard))
	require.NoError(t, err)
	require.Equal(t, 7, code)
}

func TestRunMissingBinary(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, artifact.DistDir), 0o755))

	code, err := run(context.Background(), nil, newTestLauncher(root, io.Discard))
	require.ErrorIs(t, err, artifact.ErrBinaryNotFound)
	require.Equal(t, 1, code)
}

func TestRunUnsupportedHost(t *testing.T) {
	l := newTestLauncher(t.TempDir(), io.Discard)
	l.detector = staticDetector{Platform: "aix", Arch: "ppc64"}

	code, err := run(context.Background(), nil, l)
	require.ErrorIs(t, err, platform.ErrUnsupportedPlatform)
	require.Equal(t, 1, code)
}

type staticDetector platform.Host

func (d staticDetector) Detect(ctx context.Context) (platform.Host, error) {
	return platform.Host(d), nil
}

func TestPackageDirFromExecutable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, artifact.DistDir), 0o755))
	binDir := filepath.Join(root, "node_modules", ".bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))

	l := newTestLauncher("", io.Discard)
	l.executable = func() (string, error) {
		return filepath.Join(binDir, "go-ios"), nil
	}

	got, err := l.packageDir()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, want, gotResolved)
}

func TestFindPackageDirMissing(t *testing.T) {
	_, err := findPackageDir(t.TempDir())
	require.ErrorIs(t, err, artifact.ErrBinaryNotFound)
}
