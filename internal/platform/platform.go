// Package platform maps the host's operating system and CPU architecture to
// the platform/architecture pair used to name the distributed go-ios binaries.
//
// Hosts may be reported with Node.js identifiers (process.platform and
// process.arch, e.g. "win32" and "x64") or with Go and kernel identifiers
// (e.g. "windows", "amd64", "x86_64"); both resolve to the same target.
package platform

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrUnsupportedArch     = errors.New("unsupported architecture")
)

// Platform is a target operating system as used in artifact names.
type Platform string

const (
	Darwin  Platform = "darwin"
	Linux   Platform = "linux"
	Windows Platform = "windows"
	FreeBSD Platform = "freebsd"
)

// Arch is a target architecture as used in artifact names.
type Arch string

const (
	Arch386   Arch = "386"
	ArchAMD64 Arch = "amd64"
	ArchARM   Arch = "arm"
	ArchARM64 Arch = "arm64"

	// ArchFat names the single universal macOS artifact. It is never a host
	// architecture.
	ArchFat Arch = "fat"
)

// darwinArch is the architecture every macOS host resolves to. Changing it
// changes the artifact directory layout of the package.
const darwinArch = ArchFat

var platformMapping = map[string]Platform{
	"darwin":  Darwin,
	"linux":   Linux,
	"win32":   Windows,
	"windows": Windows,
	"freebsd": FreeBSD,
}

var archMapping = map[string]Arch{
	"ia32":    Arch386,
	"386":     Arch386,
	"x86":     Arch386,
	"i386":    Arch386,
	"i486":    Arch386,
	"i586":    Arch386,
	"i686":    Arch386,
	"x64":     ArchAMD64,
	"amd64":   ArchAMD64,
	"x86_64":  ArchAMD64,
	"arm":     ArchARM,
	"armv6l":  ArchARM,
	"armv7l":  ArchARM,
	"armv8l":  ArchARM,
	"arm64":   ArchARM64,
	"aarch64": ArchARM64,
}

// Host holds the raw identifiers reported for the running system.
type Host struct {
	Platform string
	Arch     string
}

func (h Host) String() string {
	return h.Platform + "@" + h.Arch
}

// Target is a resolved platform/architecture pair.
type Target struct {
	Platform Platform
	Arch     Arch
}

func (t Target) String() string {
	return string(t.Platform) + "-" + string(t.Arch)
}

// IsWindows reports whether binaries for t carry the .exe extension.
func (t Target) IsWindows() bool {
	return t.Platform == Windows
}

// Resolve maps a host to the target of the artifact that serves it.
//
// All macOS hosts resolve to the universal artifact, whatever their
// architecture, so an unknown architecture is only an error elsewhere.
func Resolve(host Host) (Target, error) {
	p, ok := platformMapping[normalize(host.Platform)]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, host.Platform)
	}

	if p == Darwin {
		return Target{Platform: Darwin, Arch: darwinArch}, nil
	}

	a, ok := archMapping[normalize(host.Arch)]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q on %s", ErrUnsupportedArch, host.Arch, p)
	}

	return Target{Platform: p, Arch: a}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
