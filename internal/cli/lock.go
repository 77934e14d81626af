// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"errors"

	"github.com/gofrs/flock"
	"github.com/janderssonse/debwiz/internal/domain"
)

// ErrLocked is returned when another debwiz process is running the package manager.
var ErrLocked = errors.New("another debwiz instance is running the package manager")

// acquireLock takes the process lock that keeps two instances from racing on
// apt. Read-only commands never take it.
func (app *CLI) acquireLock() (func(), error) {
	lock := flock.New(app.lockPath)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, domain.NewExitError(ExitSystemError, "Failed to acquire process lock", err)
	}

	if !locked {
		return nil, domain.NewExitError(ExitGeneralError, "Another debwiz instance is already running", ErrLocked)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			app.logger.WithError(err).Warn("Failed to release process lock")
		}
	}, nil
}
