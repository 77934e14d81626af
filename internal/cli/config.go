// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/janderssonse/debwiz/internal/config"
	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/urfave/cli/v3"
)

// ErrConfigExists is returned when config init would overwrite a file.
var ErrConfigExists = errors.New("configuration file already exists")

func (app *CLI) createConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or create the configuration file",
		Commands: []*cli.Command{
			{
				Name:  "path",
				Usage: "Print the configuration file path",
				Action: func(_ context.Context, _ *cli.Command) error {
					app.out.PlainValue(app.configPath)

					return nil
				},
			},
			{
				Name:   "init",
				Usage:  "Write the default configuration file",
				Action: app.runConfigInit,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON Schema of the configuration file",
				Action: func(_ context.Context, _ *cli.Command) error {
					data, err := config.Schema()
					if err != nil {
						return domain.NewExitError(ExitGeneralError, "failed to build schema", err)
					}

					app.out.PlainValue(string(data))

					return nil
				},
			},
		},
	}
}

func (app *CLI) runConfigInit(_ context.Context, _ *cli.Command) error {
	_, err := os.Stat(app.configPath)

	switch {
	case err == nil:
		return domain.NewExitError(ExitConfigError, app.configPath+" already exists", ErrConfigExists)
	case !errors.Is(err, fs.ErrNotExist):
		return domain.NewExitError(ExitConfigError, "cannot check configuration file", err)
	}

	if err := config.Default().Save(app.configPath); err != nil {
		return domain.NewExitError(ExitConfigError, "failed to write configuration", err)
	}

	app.out.Successf("Wrote %s", app.configPath)

	return nil
}
