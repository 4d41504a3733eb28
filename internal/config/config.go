// Package config loads the optional YAML configuration of the go-ios
// installer.
package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultFile is the configuration file looked up in the package directory.
const DefaultFile = ".goios.yaml"

// Config holds the installer settings that can be set from a file.
// Command line flags and GOIOS_* environment variables take precedence.
type Config struct {
	// PackageDir is the root of the npm package, holding package.json and dist/.
	PackageDir string `yaml:"packageDir"`
	// InstallDir overrides goBinary.path from package.json.
	InstallDir string `yaml:"installDir"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// LoadConfig reads the configuration from a reader into `cfg`.
func LoadConfig(r io.Reader, cfg *Config) error {
	if r == nil {
		return nil
	}
	err := yaml.NewDecoder(r).Decode(cfg)
	if errors.Is(err, io.EOF) {
		// empty document
		return nil
	}
	return err
}

// LoadConfigFile reads the configuration a file into `cfg`.
func LoadConfigFile(name string, cfg *Config) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()
	return LoadConfig(file, cfg)
}

// Merge overwrites fields of c with the non-empty fields of o.
func (c *Config) Merge(o Config) {
	if o.PackageDir != "" {
		c.PackageDir = o.PackageDir
	}
	if o.InstallDir != "" {
		c.InstallDir = o.InstallDir
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
}

// ExpandPath expands a leading "~" and environment variables in path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		path = filepath.Join("${HOME}", path[1:])
	}
	return os.ExpandEnv(path)
}
