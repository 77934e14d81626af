// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli provides the debwiz command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cliAdapter "github.com/janderssonse/debwiz/internal/adapters/cli"
	"github.com/janderssonse/debwiz/internal/adapters/platform"
	"github.com/janderssonse/debwiz/internal/adapters/ubuntu"
	"github.com/janderssonse/debwiz/internal/config"
	"github.com/janderssonse/debwiz/internal/console"
	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/janderssonse/debwiz/internal/logging"
	"github.com/janderssonse/debwiz/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Exit codes follow standard Unix conventions for better scripting support.
// Range 0-125 are safe to use (126+ have special meaning in shells).
const (
	ExitSuccess         = 0 // Operation completed successfully
	ExitGeneralError    = 1 // Generic failure (catch-all)
	ExitUsageError      = 2 // Invalid command line usage
	ExitConfigError     = 3 // Configuration file error
	ExitPermissionError = 4 // Authorization not granted
	ExitNotFoundError   = 5 // Package file not found

	ExitDependencyError = 10 // Missing dependency
	ExitSystemError     = 12 // System call failed
	ExitInterruptError  = 14 // User interrupted (Ctrl+C)

	ExitAppError = 22 // Package installation/removal failed
)

// Version is set at build time.
var Version = "dev" //nolint:gochecknoglobals

var (
	// ErrMissingArgument is returned when a command needs a package argument.
	ErrMissingArgument = errors.New("missing argument")
	// ErrLicenseDeclined is returned when the package license was not accepted.
	ErrLicenseDeclined = errors.New("license not accepted")
	// ErrTerminalRequired is returned when the wizard is started without a terminal.
	ErrTerminalRequired = errors.New("interactive terminal required")
)

// LicenseConfirmer asks the user to accept the license of a package.
type LicenseConfirmer func(info *domain.PackageInfo) (bool, error)

// TUILauncher runs the interactive wizard.
type TUILauncher func(ctx context.Context, opts tui.Options) error

// CLI wires the command tree to the package adapters.
type CLI struct {
	app *cli.Command

	verbose    bool
	json       bool
	quiet      bool
	plain      bool
	yes        bool
	dryRun     bool
	configPath string
	lockPath   string

	cfg      *config.Config
	out      *console.OutputState
	stdout   io.Writer
	logger   *logrus.Entry
	streamer domain.ProcessStreamer
	commands domain.CommandRunner
	reader   domain.MetadataReader
	builder  domain.CommandBuilder

	confirm    LicenseConfirmer
	launch     TUILauncher
	isTerminal func() bool
}

// Option customizes a CLI, mainly for tests.
type Option func(*CLI)

// WithConfig uses cfg instead of loading the configuration file.
func WithConfig(cfg *config.Config) Option {
	return func(app *CLI) { app.cfg = cfg }
}

// WithStreamer runs package operations through streamer.
func WithStreamer(streamer domain.ProcessStreamer) Option {
	return func(app *CLI) { app.streamer = streamer }
}

// WithMetadataReader reads package files with reader.
func WithMetadataReader(reader domain.MetadataReader) Option {
	return func(app *CLI) { app.reader = reader }
}

// WithLicenseConfirmer replaces the interactive license prompt.
func WithLicenseConfirmer(confirm LicenseConfirmer) Option {
	return func(app *CLI) { app.confirm = confirm }
}

// WithTUILauncher replaces the wizard and disables the terminal check.
func WithTUILauncher(launch TUILauncher) Option {
	return func(app *CLI) {
		app.launch = launch
		app.isTerminal = func() bool { return true }
	}
}

// WithLockPath guards package manager runs with the lock file at path.
func WithLockPath(path string) Option {
	return func(app *CLI) { app.lockPath = path }
}

// WithWriters redirects results and diagnostics.
func WithWriters(stdout, stderr io.Writer) Option {
	return func(app *CLI) {
		app.stdout = stdout
		app.out.Stdout = stdout
		app.out.Stderr = stderr
	}
}

// NewCLI creates the debwiz command tree.
func NewCLI(opts ...Option) *CLI {
	app := &CLI{
		out:        &console.OutputState{},
		logger:     logging.NewLogger("cli"),
		confirm:    confirmLicenseForm,
		launch:     tui.Run,
		isTerminal: stdioIsTerminal,
		lockPath:   filepath.Join(os.TempDir(), "debwiz.lock"),
	}

	for _, opt := range opts {
		opt(app)
	}

	app.app = &cli.Command{
		Name:      "debwiz",
		Usage:     "Install or remove a local Debian package",
		Version:   Version,
		ArgsUsage: "[file.deb]",
		Suggest:   true,
		Description: `Inspects a .deb file, shows its license for acceptance and installs or
removes it with apt-get, authorized through pkexec.

EXAMPLES:
  debwiz ./hello_2.10_amd64.deb          Open the setup wizard
  debwiz install ./hello_2.10_amd64.deb  Install without the wizard
  debwiz uninstall hello                 Remove an installed package
  debwiz info --json ./hello.deb         Show package metadata`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "show progress messages and logs on stderr",
				Aliases:     []string{"v"},
				Destination: &app.verbose,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output structured JSON results",
				Aliases:     []string{"j"},
				Destination: &app.json,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Usage:       "suppress non-essential output",
				Aliases:     []string{"q"},
				Destination: &app.quiet,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "output plain text without formatting for scripts",
				Destination: &app.plain,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept the package license without asking",
				Destination: &app.yes,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "print the package manager command instead of running it",
				Destination: &app.dryRun,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "configuration file",
				Value:       config.DefaultConfigPath(),
				Destination: &app.configPath,
			},
		},
		Before: app.initConfig,
		After: func(_ context.Context, _ *cli.Command) error {
			return logging.Close()
		},
		Action:   app.defaultAction,
		Commands: app.createCommands(),
	}

	if app.stdout != nil {
		app.app.Writer = app.stdout
		app.app.ErrWriter = app.out.Stderr
	}

	return app
}

// Run executes the CLI application. In JSON mode a failure is also reported
// as a JSON object on stdout.
func (app *CLI) Run(ctx context.Context, args []string) error {
	err := app.app.Run(ctx, args)
	if err == nil || !app.json {
		return err
	}

	code := ExitGeneralError

	var exitErr *domain.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message == "" {
			return err
		}

		code = exitErr.Code
	}

	app.out.JSONResult("error", map[string]any{
		"error": err.Error(),
		"code":  code,
	})

	return err
}

func (app *CLI) createCommands() []*cli.Command {
	return []*cli.Command{
		app.createInstallCommand(),
		app.createUninstallCommand(),
		app.createInfoCommand(),
		app.createLicenseCommand(),
		app.createTUICommand(),
		app.createConfigCommand(),
		app.createLogsCommand(),
	}
}

// initConfig loads configuration, configures logging and builds the adapters.
func (app *CLI) initConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if app.json && app.plain {
		return ctx, domain.NewExitError(ExitUsageError, "cannot use both --json and --plain flags simultaneously", nil)
	}

	app.out.SetMode(app.verbose, app.json, app.plain, app.quiet)

	if app.cfg == nil {
		cfg, err := config.Load(app.configPath)
		if err != nil {
			return ctx, domain.NewExitError(ExitConfigError, "failed to load configuration", err)
		}

		app.cfg = cfg
	}

	logCfg := app.cfg.Log
	logCfg.Stderr = app.verbose && !isWizardInvocation(cmd.Args().Slice())

	if err := logging.Configure(logCfg); err != nil {
		app.out.Warningf("Logging disabled: %v", err)
	}

	if app.streamer == nil {
		runner := platform.NewCommandRunner(app.verbose, app.dryRun)
		app.streamer = runner
		app.commands = runner
	}

	if app.reader == nil {
		app.reader = ubuntu.NewDebReader(platform.NewCommandRunner(app.verbose, false))
	}

	app.builder = ubuntu.NewAptCommandBuilder(app.cfg.ElevationHelper)

	app.logger.WithFields(logrus.Fields{
		"version": Version,
		"dry_run": app.dryRun,
		"helper":  app.cfg.ElevationHelper,
	}).Debug("Configured")

	return ctx, nil
}

// isWizardInvocation reports whether args start the full-screen wizard, which
// owns the terminal and must not be mixed with log lines.
func isWizardInvocation(args []string) bool {
	if len(args) == 0 {
		return false
	}

	return args[0] == "tui" || (len(args) == 1 && isDebPath(args[0]))
}

func isDebPath(arg string) bool {
	return strings.HasSuffix(strings.ToLower(arg), ".deb")
}

// defaultAction opens the wizard for a single .deb argument.
func (app *CLI) defaultAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()

	switch {
	case len(args) == 0:
		return cli.ShowAppHelp(cmd)
	case len(args) == 1 && isDebPath(args[0]):
		return app.openWizard(ctx, args[0])
	default:
		return domain.NewExitError(ExitUsageError,
			fmt.Sprintf("'%s' is not a command or package file, run 'debwiz --help'", args[0]), nil)
	}
}

// output returns the stdout result adapter for the current flags.
func (app *CLI) output() domain.OutputPort {
	return cliAdapter.OutputFromFlags(app.stdout, app.json, app.quiet)
}

func stdioIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
