// Package artifact knows how the go-ios release binaries are laid out inside
// the npm package and locates the one for a resolved target.
package artifact

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/danielpaulus/go-ios-npm/internal/metaerr"
	"github.com/danielpaulus/go-ios-npm/internal/platform"
)

const (
	// DistDir is the directory of the package holding all binaries.
	DistDir = "dist"
	// BaseName is the name of the distributed binary, without extension.
	BaseName = "ios"
	// ExeExt is appended to binary names on windows.
	ExeExt = ".exe"
)

// Descriptor identifies one distributed binary.
type Descriptor struct {
	Platform platform.Platform
	Arch     platform.Arch
	BaseName string
	Ext      string
}

// NewDescriptor returns the descriptor of the binary built for target.
func NewDescriptor(target platform.Target) Descriptor {
	return Descriptor{
		Platform: target.Platform,
		Arch:     target.Arch,
		BaseName: BaseName,
		Ext:      Ext(target),
	}
}

// Ext returns the executable file extension for target.
func Ext(target platform.Target) string {
	if target.IsWindows() {
		return ExeExt
	}
	return ""
}

// FileName returns the binary's file name, e.g. "ios.exe".
func (d Descriptor) FileName() string {
	return d.BaseName + d.Ext
}

// DirName returns the name of the directory holding the binary, e.g.
// "go-ios-linux-amd64_linux_amd64".
func (d Descriptor) DirName() string {
	return fmt.Sprintf("go-ios-%[1]s-%[2]s_%[1]s_%[2]s", d.Platform, d.Arch)
}

// Path returns the location of the binary described by d below root.
// root is the dist directory, not the package root.
func Path(root string, d Descriptor) string {
	return filepath.Join(root, d.DirName(), d.FileName())
}

// Target returns the platform/architecture pair d was built for.
func (d Descriptor) Target() platform.Target {
	return platform.Target{Platform: d.Platform, Arch: d.Arch}
}

// Detect resolves the descriptor of the binary serving the running host.
func Detect(ctx context.Context, detector platform.Detector) (Descriptor, error) {
	host, err := detector.Detect(ctx)
	if err != nil {
		return Descriptor{}, err
	}
	target, err := platform.Resolve(host)
	if err != nil {
		return Descriptor{}, metaerr.WithMetadata(err, "host", host.String())
	}
	return NewDescriptor(target), nil
}
