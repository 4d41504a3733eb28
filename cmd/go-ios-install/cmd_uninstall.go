package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/cluttrdev/cli"
	"github.com/pterm/pterm"

	"github.com/danielpaulus/go-ios-npm/internal/install"
	"github.com/danielpaulus/go-ios-npm/internal/metaerr"
)

func newUninstallCmd() *cli.Command {
	cfg := uninstallCmd{}

	fs := flag.NewFlagSet("go-ios-install uninstall", flag.ContinueOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "uninstall",
		ShortHelp:  "Remove the installed go-ios binary.",
		ShortUsage: "go-ios-install uninstall [OPTION]...",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type uninstallCmd struct {
	rootCmd
}

func (c *uninstallCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
}

func (c *uninstallCmd) Exec(ctx context.Context, args []string) (err error) {
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
		Platform:       d.Target(),
		InstallDir:     cfg.InstallDir,
		PrefixFallback: true,
	})
	if err != nil {
		slog.With("error", err).With(metaerr.GetMetadata(err)...).Error("failed to load package metadata")
		return err
	}

	res, err := install.NewInstaller(nil).Uninstall(target)
	if err != nil {
		slog.With("error", err).
			With(metaerr.GetMetadata(err)...).
			Error("failed to uninstall binary")
		pterm.Error.Println("Failed to uninstall go-ios: ", err)
		return fmt.Errorf("uninstall binary: %w", err)
	}

	slog.Debug("uninstall finished", "result", res.String(), "path", target.Path())
	pterm.Success.Println("Uninstalled cli successfully")
	return nil
}
