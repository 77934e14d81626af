// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/janderssonse/debwiz/internal/application"
	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/janderssonse/debwiz/internal/notify"
	"github.com/janderssonse/debwiz/internal/tui"
	"github.com/urfave/cli/v3"
)

func (app *CLI) createInstallCommand() *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "Install or reinstall a package file without the wizard",
		ArgsUsage: "<file.deb>",
		Description: `Installs the package file with apt-get, which also resolves its
dependencies. An already installed package is reinstalled. If the package
ships a license it has to be accepted first, use --yes to accept it.

Examples:
  debwiz install ./hello_2.10_amd64.deb
  debwiz install --yes --json ./hello_2.10_amd64.deb`,
		Action: app.runInstall,
	}
}

func (app *CLI) createUninstallCommand() *cli.Command {
	return &cli.Command{
		Name:      "uninstall",
		Aliases:   []string{"remove"},
		Usage:     "Remove the package contained in a file, or a package by name",
		ArgsUsage: "<file.deb|package>",
		Action:    app.runUninstall,
	}
}

func (app *CLI) createInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show package metadata and installation status",
		ArgsUsage: "<file.deb>",
		Action:    app.runInfo,
	}
}

func (app *CLI) createLicenseCommand() *cli.Command {
	return &cli.Command{
		Name:      "license",
		Usage:     "Print the license shipped in a package file",
		ArgsUsage: "<file.deb>",
		Action:    app.runLicense,
	}
}

func (app *CLI) createTUICommand() *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Open the setup wizard for a package file",
		ArgsUsage: "<file.deb>",
		Description: `Opens the interactive setup wizard.

Navigation:
- Enter or n continues, b goes back
- Tab moves between buttons, space toggles the license acceptance
- Press q or Ctrl+C to quit (not while the package manager runs)`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := requireArg(cmd, "package file")
			if err != nil {
				return err
			}

			return app.openWizard(ctx, path)
		},
	}
}

func requireArg(cmd *cli.Command, what string) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", domain.NewExitError(ExitUsageError,
			fmt.Sprintf("%s expects exactly one %s", cmd.Name, what), ErrMissingArgument)
	}

	return cmd.Args().First(), nil
}

// readPackage reads metadata and maps failures to exit codes.
func (app *CLI) readPackage(ctx context.Context, path string) (*domain.PackageInfo, error) {
	info, err := app.reader.Read(ctx, path)
	if err == nil {
		return info, nil
	}

	switch {
	case errors.Is(err, domain.ErrNotDebFile):
		return nil, domain.NewExitError(ExitUsageError, "not a .deb package file", err)
	case errors.Is(err, fs.ErrNotExist):
		return nil, domain.NewExitError(ExitNotFoundError, "package file not found", err)
	default:
		return nil, domain.NewExitError(ExitAppError, "cannot read package file", err)
	}
}

func (app *CLI) runInstall(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "package file")
	if err != nil {
		return err
	}

	info, err := app.readPackage(ctx, path)
	if err != nil {
		return err
	}
	if info.HasLicense() {
		if err := app.acceptLicense(info); err != nil {
			return err
		}
	}

	return app.runOperation(ctx, info, info.InstallRequest())
}

func (app *CLI) runUninstall(ctx context.Context, cmd *cli.Command) error {
	target, err := requireArg(cmd, "package file or name")
	if err != nil {
		return err
	}

	info := &domain.PackageInfo{Name: target}

	if isDebPath(target) {
		info, err = app.readPackage(ctx, target)
		if err != nil {
			return err
		}
	}

	if isDebPath(target) && !info.Installed && !app.json && !app.plain {
		app.out.Warningf("%s does not appear to be installed", info.DisplayName())
	}

	return app.runOperation(ctx, info, info.UninstallRequest())
}

func (app *CLI) runInfo(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "package file")
	if err != nil {
		return err
	}

	info, err := app.readPackage(ctx, path)
	if err != nil {
		return err
	}
	if app.plain {
		app.out.PlainKeyValue("name", info.Name)
		app.out.PlainKeyValue("version", info.Version)
		app.out.PlainKeyValue("summary", info.Summary())
		app.out.PlainKeyValue("installed", fmt.Sprint(info.Installed))
		app.out.PlainKeyValue("license", fmt.Sprint(info.HasLicense()))
		app.out.PlainKeyValue("icon", info.Icon)
		app.out.PlainKeyValue("path", info.Path)

		return nil
	}

	if err := app.output().Package(info); err != nil {
		return domain.NewExitError(ExitGeneralError, "failed to output results", err)
	}

	return nil
}

func (app *CLI) runLicense(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "package file")
	if err != nil {
		return err
	}

	info, err := app.readPackage(ctx, path)
	if err != nil {
		return err
	}
	if !info.HasLicense() {
		return domain.NewExitError(ExitNotFoundError, info.DisplayName()+" does not ship a license file", nil)
	}

	if app.json {
		app.out.JSONResult("success", map[string]any{
			"package": info.Name,
			"license": info.License,
		})

		return nil
	}

	if app.plain {
		app.out.PlainValue(info.License)

		return nil
	}

	app.out.Result(info.License)

	return nil
}

// openWizard starts the full-screen wizard for a package file.
func (app *CLI) openWizard(ctx context.Context, path string) error {
	if !app.isTerminal() {
		return domain.NewExitError(ExitUsageError,
			"the wizard needs a terminal, use 'debwiz install' or 'debwiz uninstall' in scripts", ErrTerminalRequired)
	}

	info, err := app.readPackage(ctx, path)
	if err != nil {
		return err
	}
	release, err := app.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	events := notify.New()
	controller := application.NewOperationController(app.streamer, app.builder, events)

	err = app.launch(ctx, tui.Options{
		Package:       info,
		Controller:    controller,
		Events:        events,
		AltScreen:     app.cfg.UI.AltScreen,
		AcceptLicense: app.yes || app.cfg.UI.AutoAcceptLicense,
	})
	if err != nil {
		if app.verbose {
			return domain.NewExitError(ExitGeneralError, fmt.Sprintf("Failed to launch TUI: %v", err), nil)
		}

		return domain.NewExitError(ExitGeneralError, "Failed to launch interactive interface (terminal required)", err)
	}

	controller.Wait()

	if snap, err := controller.Result(); err == nil && snap.State == domain.StateFailed {
		return domain.NewExitError(ExitAppError, snap.Status, application.SnapshotError(snap))
	}

	return nil
}

// preflight checks that the package manager and elevation helper exist.
func (app *CLI) preflight() error {
	if app.commands == nil || app.dryRun {
		return nil
	}

	for _, name := range []string{app.cfg.ElevationHelper, "apt-get"} {
		if !app.commands.CommandExists(name) {
			return domain.NewExitError(ExitDependencyError, name+" is not installed", nil)
		}
	}

	return nil
}
