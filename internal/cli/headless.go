// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/janderssonse/debwiz/internal/application"
	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/janderssonse/debwiz/internal/notify"
)

// runOperation runs req to completion, reporting progress as it arrives.
func (app *CLI) runOperation(ctx context.Context, info *domain.PackageInfo, req domain.OperationRequest) error {
	if err := app.preflight(); err != nil {
		return err
	}

	release, err := app.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	events := notify.New()
	controller := application.NewOperationController(app.streamer, app.builder, events)
	output := app.output()
	started := time.Now()

	if err := controller.Start(ctx, req); err != nil {
		return domain.NewExitError(ExitUsageError, "cannot start "+req.Kind.String(), err)
	}

	snap := app.follow(ctx, controller, events, output)
	app.out.EndPercent()

	if app.json {
		result := domain.NewOperationResult(snap, info.DisplayName(), time.Since(started))
		if err := output.Success("", result); err != nil {
			return domain.NewExitError(ExitGeneralError, "failed to output results", err)
		}
	}

	if snap.State == domain.StateSucceeded {
		app.out.Successf("%s", snap.Status)

		return nil
	}

	if !app.quiet {
		app.out.Transcript(snap.Output)
	}

	diagnosis := domain.DiagnoseOutput(snap.Output, snap.ExitCode)

	app.out.Errorf("%s failed: %s", req.Kind, diagnosis.Message)

	for _, suggestion := range diagnosis.Suggestions {
		app.out.Hintf("%s", suggestion)
	}

	code := ExitAppError
	if snap.ExitCode == domain.PkexecNotAuthorized || snap.ExitCode == domain.PkexecDismissed {
		code = ExitPermissionError
	}

	return domain.NewExitError(code, "", application.SnapshotError(snap))
}

// follow consumes notifications until the operation finishes and returns the
// final snapshot. An interrupt does not stop the package manager, so follow
// keeps waiting after telling the user.
func (app *CLI) follow(ctx context.Context, controller *application.OperationController,
	events *notify.Notifier, output domain.OutputPort,
) domain.Snapshot {
	shown := controller.Snapshot()
	app.report(shown, output)

	waitCtx := ctx

	for {
		batch, err := events.Next(waitCtx)
		if err != nil {
			app.out.Warningf("The package manager cannot be interrupted safely, waiting for it to finish")
			app.logger.WithError(err).Warn("Interrupted while the operation is running")

			waitCtx = context.Background()

			continue
		}

		for _, event := range batch {
			if event.Kind == notify.KindFinished {
				controller.Wait()

				final := controller.Snapshot()
				if final.DisplayFraction() != shown.Fraction || final.Status != shown.Status {
					app.report(final, output)
				}

				return final
			}

			snap := controller.Snapshot()
			if snap.Fraction != shown.Fraction || snap.Status != shown.Status {
				shown = snap
				app.report(snap, output)
			}
		}
	}
}

func (app *CLI) report(snap domain.Snapshot, output domain.OutputPort) {
	app.out.Percent(snap.DisplayFraction(), snap.Status)
	_ = output.Progress(snap.DisplayFraction(), snap.Status)
}

// acceptLicense returns nil once the license was accepted.
func (app *CLI) acceptLicense(info *domain.PackageInfo) error {
	if app.yes || app.cfg.UI.AutoAcceptLicense {
		app.out.Progressf("Accepted the license of %s", info.DisplayName())

		return nil
	}

	if app.json || app.plain || !app.isTerminal() {
		return domain.NewExitError(ExitUsageError,
			info.DisplayName()+" ships a license that must be accepted, rerun with --yes to accept it", ErrLicenseDeclined)
	}

	accepted, err := app.confirm(info)
	if err != nil {
		return domain.NewExitError(ExitGeneralError, "license prompt failed", err)
	}

	if !accepted {
		return domain.NewExitError(ExitInterruptError, "license not accepted, nothing was installed", ErrLicenseDeclined)
	}

	return nil
}

// confirmLicenseForm shows the license and asks for acceptance.
func confirmLicenseForm(info *domain.PackageInfo) (bool, error) {
	accepted := false

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("License agreement for %s", info.DisplayName())).
				Description(info.License),
			huh.NewConfirm().
				Title("Do you accept the terms of this license?").
				Affirmative("Accept").
				Negative("Decline").
				Value(&accepted),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}

		return false, fmt.Errorf("failed to run license prompt: %w", err)
	}

	return accepted, nil
}
