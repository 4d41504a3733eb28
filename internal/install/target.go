// Package install places the go-ios binary matching the host into the
// directory declared by the npm package, and removes it again.
package install

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	ErrValidation         = errors.New("invalid package metadata")
	ErrCopyFailed         = errors.New("copy failed")
	ErrVerificationFailed = errors.New("verification failed")
	ErrRemoveFailed       = errors.New("remove failed")
)

// Target describes where a binary gets installed.
type Target struct {
	// BinaryName is the installed name without extension (goBinary.name).
	BinaryName string
	// Ext is ".exe" for windows targets.
	Ext string
	// InstallDir is the directory receiving the binary (goBinary.path).
	InstallDir string
	// Version is the package version without a leading "v".
	Version string
}

// FileName returns the installed file name, e.g. "ios.exe".
func (t Target) FileName() string {
	return t.BinaryName + t.Ext
}

// Path returns the installed file path.
func (t Target) Path() string {
	return filepath.Join(t.InstallDir, t.FileName())
}

// Validate reports every missing or malformed field at once.
func (t Target) Validate() error {
	var problems []string
	if t.Version == "" {
		problems = append(problems, "'version' property must be specified")
	} else if _, err := semver.NewVersion(t.Version); err != nil {
		problems = append(problems, fmt.Sprintf("'version' property is not a valid version: %v", err))
	}
	problems = append(problems, t.validateBinary()...)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (t Target) validateBinary() []string {
	problems := t.validateName()
	if t.InstallDir == "" {
		problems = append(problems, "'goBinary.path' property is necessary")
	}
	return problems
}

func (t Target) validateName() []string {
	var problems []string
	if t.BinaryName == "" {
		problems = append(problems, "'goBinary.name' property is necessary")
	} else if strings.ContainsAny(t.BinaryName, `/\`) || t.BinaryName == "." || t.BinaryName == ".." {
		problems = append(problems, fmt.Sprintf("'goBinary.name' must be a plain file name: %q", t.BinaryName))
	}
	return problems
}

// NormalizeVersion strips a leading "v" from version, v0.0.1 => 0.0.1.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}
