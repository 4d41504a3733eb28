package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/cluttrdev/cli"
	"github.com/pterm/pterm"

	"github.com/danielpaulus/go-ios-npm/internal/artifact"
	"github.com/danielpaulus/go-ios-npm/internal/install"
	"github.com/danielpaulus/go-ios-npm/internal/metaerr"
)

func newInstallCmd() *cli.Command {
	cfg := installCmd{}

	fs := flag.NewFlagSet("go-ios-install install", flag.ContinueOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "install",
		ShortHelp:  "Install the go-ios binary for this platform.",
		ShortUsage: "go-ios-install install [OPTION]...",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type installCmd struct {
	rootCmd
}

func (c *installCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
}

func (c *installCmd) Exec(ctx context.Context, args []string) (err error) {
	if len(args) > 0 {
		return errUsage
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.initLogging(cfg)

	defer func() {
		err = c.withLogHint(err)
	}()

	d, err := c.descriptor(ctx)
	if err != nil {
		slog.With("error", err).With(metaerr.GetMetadata(err)...).Error("failed to resolve platform")
		return err
	}

	target, err := install.LoadTarget(cfg.PackageDir, install.LoadOptions{
		Platform:   d.Target(),
		InstallDir: cfg.InstallDir,
	})
	if err != nil {
		slog.With("error", err).With(metaerr.GetMetadata(err)...).Error("failed to load package metadata")
		return err
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Copying the relevant binary for your platform %s", d.Target()))

	installer := install.NewInstaller(artifact.NewLocator(nil))
	dst, err := installer.Install(d, cfg.PackageDir, target)
	if err != nil {
		slog.With("error", err).
			With(metaerr.GetMetadata(err)...).
			Error("failed to install binary")
		spinner.Fail("Failed to install go-ios: ", err)
		return fmt.Errorf("install binary: %w", err)
	}

	spinner.Success(fmt.Sprintf("go-ios %s installed to %s, run '%s --help' for details", target.Version, dst, target.BinaryName))
	return nil
}
