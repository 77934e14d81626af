// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package domain_test

import (
	"errors"
	"testing"

	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/stretchr/testify/assert"
)

// TestExitErrorFormatting tests that ExitError properly formats messages.
func TestExitErrorFormatting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		exitError       *domain.ExitError
		expectedCode    int
		expectedMessage string
	}{
		{
			name: "exit error with underlying error",
			exitError: domain.NewExitError(1, "Operation failed",
				errors.New("permission denied")),
			expectedCode:    1,
			expectedMessage: "Operation failed: permission denied",
		},
		{
			name:            "exit error without underlying error",
			exitError:       domain.NewExitError(2, "Invalid usage", nil),
			expectedCode:    2,
			expectedMessage: "Invalid usage",
		},
		{
			name: "exit error wrapping a non-zero exit",
			exitError: domain.NewExitError(22, "Install failed",
				&domain.ExitCodeError{Code: 100}),
			expectedCode:    22,
			expectedMessage: "Install failed: process exited with non-zero status: 100",
		},
		{
			name:            "already reported failure",
			exitError:       domain.NewExitError(22, "", &domain.ExitCodeError{Code: 100}),
			expectedCode:    22,
			expectedMessage: "process exited with non-zero status: 100",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expectedMessage, tc.exitError.Error())
			assert.Equal(t, tc.expectedCode, tc.exitError.Code)
		})
	}
}

func TestExitCodeError_Is(t *testing.T) {
	t.Parallel()

	err := domain.NewExitError(22, "failed", &domain.ExitCodeError{Code: 1})

	assert.ErrorIs(t, err, domain.ErrNonZeroExit)

	var codeErr *domain.ExitCodeError
	if assert.ErrorAs(t, err, &codeErr) {
		assert.Equal(t, 1, codeErr.Code)
	}
}

func TestDiagnoseOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		output   string
		exitCode int
		want     string
	}{
		{
			name:     "pkexec dismissed",
			output:   "",
			exitCode: domain.PkexecDismissed,
			want:     "Authorization was not granted",
		},
		{
			name:     "pkexec not authorized",
			output:   "Error executing command as another user: Not authorized",
			exitCode: domain.PkexecNotAuthorized,
			want:     "Authorization was not granted",
		},
		{
			name:     "dpkg lock held",
			output:   "E: Could not get lock /var/lib/dpkg/lock-frontend. It is held by process 1234",
			exitCode: 100,
			want:     "Another package manager is running",
		},
		{
			name:     "broken dependencies",
			output:   "The following packages have unmet dependencies:\n foo : Depends: libbar",
			exitCode: 100,
			want:     "Missing dependencies",
		},
		{
			name:     "corrupt archive",
			output:   "dpkg-deb: error: 'foo.deb' is not a Debian format archive",
			exitCode: 1,
			want:     "The file is not a valid Debian package",
		},
		{
			name:     "unknown failure",
			output:   "E: Sub-process returned an error code",
			exitCode: 1,
			want:     "Operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := domain.DiagnoseOutput(tt.output, tt.exitCode)
			assert.Equal(t, tt.want, info.Message)
			assert.NotEmpty(t, info.Suggestions)
		})
	}
}

func TestFormatDiagnosis(t *testing.T) {
	t.Parallel()

	info := domain.ErrorInfo{
		Message:     "Missing dependencies",
		Suggestions: []string{"first", "second"},
	}

	assert.Equal(t, "✗ Missing dependencies (first)", domain.FormatDiagnosis(info, false))

	verbose := domain.FormatDiagnosis(info, true)
	assert.Contains(t, verbose, "Suggestions:")
	assert.Contains(t, verbose, "• second")

	assert.Equal(t, "✗ Plain", domain.FormatDiagnosis(domain.ErrorInfo{Message: "Plain"}, false))
}

func TestPkexecExitCodes(t *testing.T) {
	t.Parallel()

	// pkexec(1): 126 when the dialog is dismissed, 127 when not authorized.
	assert.Equal(t, 126, domain.PkexecDismissed)
	assert.Equal(t, 127, domain.PkexecNotAuthorized)
}
