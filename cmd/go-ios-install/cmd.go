package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cluttrdev/cli"

	"github.com/danielpaulus/go-ios-npm/internal/artifact"
	"github.com/danielpaulus/go-ios-npm/internal/config"
	"github.com/danielpaulus/go-ios-npm/internal/logging"
	"github.com/danielpaulus/go-ios-npm/internal/platform"
)

const usage = "Invalid command. `install` and `uninstall` are the only supported commands"

var errUsage = errors.New("invalid command")

// execute configures the root command and then runs it with the given context.
func execute(ctx context.Context, args []string) error {
	cmd := configure()
	opts := []cli.ParseOption{
		cli.WithEnvVarPrefix("GOIOS"),
	}

	if err := cmd.Parse(args, opts...); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	return cmd.Run(ctx)
}

// configure returns the root command.
func configure() *cli.Command {
	var cfg rootCmd

	fs := flag.NewFlagSet("go-ios-install", flag.ContinueOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "go-ios-install",
		ShortHelp:  "Install the go-ios binary shipped with the npm package.",
		ShortUsage: "go-ios-install [COMMAND] [OPTION]...",
		Subcommands: []*cli.Command{
			cli.DefaultVersionCommand(os.Stdout),
			newInstallCmd(),
			newUninstallCmd(),
		},
		Flags: fs,
		Exec:  cfg.Exec,
	}
}

type rootCmd struct {
	ConfigFile string
	flags      config.Config

	logFile *os.File
	debug   bool

	detector platform.Detector
}

func (c *rootCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", config.DefaultFile, "The configuration file.")
	fs.StringVar(&c.flags.PackageDir, "package-dir", "", "The npm package root holding package.json and dist/ (default \".\").")
	fs.StringVar(&c.flags.InstallDir, "install-dir", "", "Install into this directory instead of goBinary.path.")

	fs.StringVar(&c.flags.LogLevel, "log-level", "", "The log level (default \"info\").")
	fs.StringVar(&c.flags.LogFormat, "log-format", "", "The log format ('text' or 'json').")
	fs.BoolVar(&c.debug, "debug", false, "Enable debug mode.")
}

// Exec runs when no known subcommand was given.
func (c *rootCmd) Exec(ctx context.Context, args []string) error {
	return errUsage
}

// loadConfig merges defaults, the configuration file and flags, in this
// order. A missing configuration file is fine.
func (c *rootCmd) loadConfig() (config.Config, error) {
	cfg := config.Config{
		PackageDir: ".",
		LogLevel:   "info",
		LogFormat:  "text",
	}

	var fileCfg config.Config
	if err := config.LoadConfigFile(c.ConfigFile, &fileCfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load configuration: %w", err)
	}
	cfg.Merge(fileCfg)
	cfg.Merge(c.flags)

	if c.debug {
		cfg.LogLevel = "debug"
	}

	cfg.PackageDir = config.ExpandPath(cfg.PackageDir)
	if abs, err := filepath.Abs(cfg.PackageDir); err == nil {
		cfg.PackageDir = abs
	}
	if cfg.InstallDir != "" {
		cfg.InstallDir = config.ExpandPath(cfg.InstallDir)
	}
	return cfg, nil
}

func (c *rootCmd) initLogging(cfg config.Config) {
	if c.logFile == nil {
		c.logFile = logging.OpenStateLog("go-ios-install.log")
	}
	logging.Init(c.logFile, "go-ios-install", cfg.LogLevel, cfg.LogFormat)
}

// withLogHint points at the log file if err was logged there.
func (c *rootCmd) withLogHint(err error) error {
	if err != nil && c.logFile != nil && c.logFile != os.Stderr {
		return fmt.Errorf("%w\nSee %s for details", err, c.logFile.Name())
	}
	return err
}

func (c *rootCmd) descriptor(ctx context.Context) (artifact.Descriptor, error) {
	detector := c.detector
	if detector == nil {
		detector = platform.NewDetector()
	}
	d, err := artifact.Detect(ctx, detector)
	if err != nil {
		return d, err
	}
	slog.Debug("resolved platform", "target", d.Target().String())
	return d, nil
}
