package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel maps a level name such as "debug" or "WARN" to a slog level.
// Offsets like "info+2" are accepted. Unknown names give info.
func ParseLevel(level string) slog.Level {
	name := strings.TrimSpace(level)
	if strings.EqualFold(name, "warning") {
		name = "warn"
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

var handlers = map[string]func(io.Writer, *slog.HandlerOptions) slog.Handler{
	"text": func(w io.Writer, opts *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, opts) },
	"json": func(w io.Writer, opts *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, opts) },
}

// New returns a logger writing to w. format is 'text' (the fallback) or
// 'json'.
func New(w io.Writer, level string, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	newHandler, ok := handlers[strings.ToLower(format)]
	if !ok {
		newHandler = handlers["text"]
	}
	return slog.New(newHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Init makes a logger tagged with component the default one.
func Init(w io.Writer, component string, level string, format string) *slog.Logger {
	logger := New(w, level, format)
	if component != "" {
		logger = logger.With(slog.String("component", component))
	}
	slog.SetDefault(logger)
	return logger
}

// OpenStateLog opens (or creates) name in the user's state directory for
// appending. It returns os.Stderr if that is not possible.
func OpenStateLog(name string) *os.File {
	stateDir, err := UserStateDir()
	if err != nil {
		return os.Stderr
	}
	dir := filepath.Join(stateDir, "go-ios")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.Stderr
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return os.Stderr
	}
	return f
}

// UserStateDir returns $XDG_STATE_HOME, or ~/.local/state if unset.
func UserStateDir() (string, error) {
	xdgStateHome, ok := os.LookupEnv("XDG_STATE_HOME")
	if !ok || xdgStateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		xdgStateHome = filepath.Join(home, ".local", "state")
	}

	return xdgStateHome, nil
}
