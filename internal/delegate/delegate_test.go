package delegate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const helperEnvVar = "GOIOS_DELEGATE_HELPER"

// TestMain doubles as the child process: with helperEnvVar set the test
// binary behaves like a small CLI instead of running tests.
func TestMain(m *testing.M) {
	if mode := os.Getenv(helperEnvVar); mode != "" {
		os.Exit(helperMain(mode, os.Args[1:]))
	}
	goleak.VerifyTestMain(m)
}

func helperMain(mode string, args []string) int {
	switch mode {
	case "exit":
		code, _ := strconv.Atoi(args[0])
		return code
	case "echo":
		wd, _ := os.Getwd()
		fmt.Fprintf(os.Stdout, "args=%s\n", strings.Join(args, "|"))
		fmt.Fprintf(os.Stdout, "env=%s\n", os.Getenv("GOIOS_TEST_VALUE"))
		fmt.Fprintf(os.Stdout, "cwd=%s\n", wd)
		fmt.Fprintln(os.Stderr, "to stderr")
		return 0
	case "cat":
		_, _ = io.Copy(os.Stdout, os.Stdin)
		return 0
	case "trap":
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGTERM)
		_ = os.WriteFile(args[0], []byte("ready"), 0o644)
		select {
		case <-sigs:
			return 42
		case <-time.After(30 * time.Second):
			return 1
		}
	case "sleep":
		_ = os.WriteFile(args[0], []byte("ready"), 0o644)
		time.Sleep(30 * time.Second)
		return 1
	}
	return 99
}

func helperEnv(mode string, extra ...string) []string {
	return append(append(os.Environ(), helperEnvVar+"="+mode), extra...)
}

func newTestDelegate(stdin io.Reader) (*Delegate, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Delegate{
		Stdin:     stdin,
		Stdout:    &stdout,
		Stderr:    &stderr,
		WaitDelay: time.Second,
	}, &stdout, &stderr
}

func TestRunExitCode(t *testing.T) {
	for _, code := range []int{0, 1, 7} {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			d, _, _ := newTestDelegate(nil)
			got, err := d.Run(context.Background(), os.Args[0], []string{strconv.Itoa(code)}, helperEnv("exit"), "")
			require.NoError(t, err)
			require.Equal(t, code, got)
		})
	}
}

func TestRunPassthrough(t *testing.T) {
	cwd := t.TempDir()
	d, stdout, stderr := newTestDelegate(nil)

	args := []string{"--udid", "0000", "a b", ""}
	code, err := d.Run(context.Background(), os.Args[0], args, helperEnv("echo", "GOIOS_TEST_VALUE=forwarded"), cwd)
	require.NoError(t, err)
	require.Equal(t, 0, code)

	wantCwd, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "args=--udid|0000|a b|", lines[0])
	require.Equal(t, "env=forwarded", lines[1])

	gotCwd, err := filepath.EvalSymlinks(strings.TrimPrefix(lines[2], "cwd="))
	require.NoError(t, err)
	require.Equal(t, wantCwd, gotCwd)

	require.Equal(t, "to stderr\n", stderr.String())
}

func TestRunStdin(t *testing.T) {
	d, stdout, _ := newTestDelegate(strings.NewReader("list\ninfo\n"))

	code, err := d.Run(context.Background(), os.Args[0], nil, helperEnv("cat"), "")
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "list\ninfo\n", stdout.String())
}

func TestRunLargeOutput(t *testing.T) {
	// the child writes more than a pipe buffer holds before exiting
	in := strings.Repeat("0123456789abcdef", 64*1024)
	d, stdout, _ := newTestDelegate(strings.NewReader(in))

	code, err := d.Run(context.Background(), os.Args[0], nil, helperEnv("cat"), "")
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, len(in), stdout.Len())
}

func TestRunSpawnFailed(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing", path: filepath.Join(t.TempDir(), "dist", "ios")},
		{name: "directory", path: t.TempDir()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _ := newTestDelegate(nil)

			done := make(chan struct{})
			var (
				code int
				err  error
			)
			go func() {
				defer close(done)
				code, err = d.Run(context.Background(), tt.path, nil, nil, "")
			}()

			select {
			case <-done:
			case <-time.After(10 * time.Second):
				t.Fatal("Run() did not return")
			}
			require.ErrorIs(t, err, ErrSpawnFailed)
			require.Equal(t, -1, code)
		})
	}
}

func TestRunNewUsesParentStreams(t *testing.T) {
	d := New()
	require.Same(t, os.Stdin, d.Stdin)
	require.Same(t, os.Stdout, d.Stdout)
	require.Same(t, os.Stderr, d.Stderr)
	require.NotEmpty(t, d.Signals)
	require.Equal(t, DefaultWaitDelay, d.WaitDelay)

	code, err := d.Run(context.Background(), os.Args[0], []string{"3"}, helperEnv("exit"), "")
	require.NoError(t, err)
	require.Equal(t, 3, code)
}

func TestRunSpawnFailedIsNotExitError(t *testing.T) {
	d, _, _ := newTestDelegate(nil)
	_, err := d.Run(context.Background(), filepath.Join(t.TempDir(), "ios"), nil, nil, "")
	require.True(t, errors.Is(err, ErrSpawnFailed))
}
