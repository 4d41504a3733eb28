package install

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AsaiYusuke/jsonpath"

	"github.com/danielpaulus/go-ios-npm/internal/artifact"
	"github.com/danielpaulus/go-ios-npm/internal/config"
	"github.com/danielpaulus/go-ios-npm/internal/metaerr"
	"github.com/danielpaulus/go-ios-npm/internal/platform"
)

// PackageFile is the npm manifest read from the package root.
const PackageFile = "package.json"

// PrefixEnvVar is set by npm to its installation prefix while running
// package scripts.
const PrefixEnvVar = "npm_config_prefix"

const (
	versionPath    = "$.version"
	binaryNamePath = "$.goBinary.name"
	binaryDirPath  = "$.goBinary.path"
)

// LoadOptions controls how a Target is derived from package metadata.
type LoadOptions struct {
	// Platform decides the binary extension.
	Platform platform.Target
	// InstallDir, if set, takes precedence over goBinary.path.
	InstallDir string
	// PrefixFallback allows $npm_config_prefix/bin when no directory is
	// declared.
	PrefixFallback bool
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// LoadTarget reads package.json below pkgRoot. Missing fields are left
// empty; Target.Validate reports them.
func LoadTarget(pkgRoot string, opts LoadOptions) (Target, error) {
	name := filepath.Join(pkgRoot, PackageFile)
	data, err := os.ReadFile(name)
	if err != nil {
		return Target{}, metaerr.WithMetadata(
			fmt.Errorf("read package metadata: %w", err),
			"file", name,
		)
	}

	var src any
	if err := json.Unmarshal(data, &src); err != nil {
		return Target{}, metaerr.WithMetadata(
			fmt.Errorf("%w: parse %s: %v", ErrValidation, PackageFile, err),
			"file", name,
		)
	}

	return targetFromMetadata(src, pkgRoot, opts), nil
}

func targetFromMetadata(src any, pkgRoot string, opts LoadOptions) Target {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	t := Target{
		BinaryName: lookupString(src, binaryNamePath),
		Ext:        artifact.Ext(opts.Platform),
		Version:    NormalizeVersion(lookupString(src, versionPath)),
	}

	dir := opts.InstallDir
	if dir == "" {
		dir = lookupString(src, binaryDirPath)
	}
	if dir != "" {
		dir = config.ExpandPath(dir)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(pkgRoot, dir)
		}
	} else if opts.PrefixFallback {
		if prefix := getenv(PrefixEnvVar); prefix != "" {
			dir = filepath.Join(prefix, "bin")
		}
	}
	t.InstallDir = dir

	return t
}

// lookupString returns the string at path, or "" if there is none.
func lookupString(src any, path string) string {
	values, err := jsonpath.Retrieve(path, src)
	if err != nil || len(values) != 1 {
		return ""
	}
	s, _ := values[0].(string)
	return s
}
