// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	stdlog "log"

	"github.com/hpcloud/tail"
	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/urfave/cli/v3"
)

func (app *CLI) createLogsCommand() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "Print the debwiz log file",
		Description: `Prints the log written by earlier runs. With --follow the command keeps
waiting for new lines, e.g. while the wizard runs in another terminal.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "follow",
				Aliases: []string{"f"},
				Usage:   "keep printing lines as they are written",
			},
		},
		Action: app.runLogs,
	}
}

func (app *CLI) runLogs(ctx context.Context, cmd *cli.Command) error {
	path := app.cfg.Log.File
	if path == "" {
		return domain.NewExitError(ExitConfigError, "logging to a file is disabled in the configuration", nil)
	}

	follow := cmd.Bool("follow")

	tailer, err := tail.TailFile(path, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: true,
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewExitError(ExitNotFoundError, "no log file at "+path, err)
		}

		return domain.NewExitError(ExitGeneralError, "cannot read "+path, err)
	}

	defer tailer.Cleanup()

	// Interrupting a follow ends the tail, which closes Lines.
	stop := context.AfterFunc(ctx, func() { _ = tailer.Stop() })
	defer stop()

	for line := range tailer.Lines {
		if line.Err != nil {
			return domain.NewExitError(ExitGeneralError, "cannot read "+path, line.Err)
		}

		app.out.PlainValue(line.Text)
	}

	return nil
}
