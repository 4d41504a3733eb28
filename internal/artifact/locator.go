package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/danielpaulus/go-ios-npm/internal/metaerr"
)

var (
	ErrBinaryNotFound    = errors.New("binary not found")
	ErrBinaryNotReadable = errors.New("binary not readable")
)

// Location is a verified binary path.
type Location struct {
	Path     string
	Verified bool
}

// Prober checks a file on disk.
type Prober interface {
	Stat(name string) (fs.FileInfo, error)
	// Readable returns nil if the current user may read name.
	Readable(name string) error
}

// OSProber probes the local filesystem.
type OSProber struct{}

func (OSProber) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (OSProber) Readable(name string) error {
	return readable(name)
}

type locatorKey struct {
	desc Descriptor
	root string
}

// Locator finds distributed binaries and remembers successful lookups for
// its own lifetime. A remembered location is not checked again, so a file
// removed after the first lookup is only noticed when it is executed.
type Locator struct {
	prober Prober

	mu    sync.Mutex
	cache map[locatorKey]Location
}

// NewLocator returns a Locator probing with p, or the local filesystem if p
// is nil.
func NewLocator(p Prober) *Locator {
	if p == nil {
		p = OSProber{}
	}
	return &Locator{
		prober: p,
		cache:  make(map[locatorKey]Location),
	}
}

// Locate returns the verified location of the binary d below root.
func (l *Locator) Locate(d Descriptor, root string) (Location, error) {
	key := locatorKey{desc: d, root: root}

	l.mu.Lock()
	defer l.mu.Unlock()

	if loc, ok := l.cache[key]; ok {
		return loc, nil
	}

	path := Path(root, d)
	if err := l.verify(path); err != nil {
		return Location{}, metaerr.WithMetadata(err,
			"path", path,
			"platform", d.Platform,
			"arch", d.Arch,
		)
	}

	loc := Location{Path: path, Verified: true}
	l.cache[key] = loc
	slog.Debug("located binary", "path", path)
	return loc, nil
}

func (l *Locator) verify(path string) error {
	info, err := l.prober.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: no precompiled go-ios binary at %s", ErrBinaryNotFound, path)
		}
		return fmt.Errorf("%w: %w", ErrBinaryNotReadable, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrBinaryNotFound, path)
	}
	if err := l.prober.Readable(path); err != nil {
		return fmt.Errorf("%w: %w", ErrBinaryNotReadable, err)
	}
	return nil
}
