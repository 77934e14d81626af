// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors.
var (
	ErrProcessStart       = errors.New("failed to start process")
	ErrNonZeroExit        = errors.New("process exited with non-zero status")
	ErrOperationRunning   = errors.New("an operation is already running")
	ErrNotTerminal        = errors.New("operation has not finished")
	ErrInvalidRequest     = errors.New("invalid operation request")
	ErrNotDebFile         = errors.New("not a Debian package file")
	ErrMetadataUnreadable = errors.New("package metadata could not be read")
	ErrWorkerPanic        = errors.New("operation worker panicked")
)

// Exit codes of the elevation helper that mean the user never authorized the command.
const (
	PkexecDismissed     = 126
	PkexecNotAuthorized = 127
)

// ExitError provides specific exit codes for different failure modes.
// An empty Message means the failure was already reported to the user.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// NewExitError creates an ExitError with the specified code and message.
func NewExitError(code int, message string, err error) *ExitError {
	return &ExitError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *ExitError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCodeError records the exit status of a package manager run that did not succeed.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("%v: %d", ErrNonZeroExit, e.Code)
}

func (e *ExitCodeError) Unwrap() error {
	return ErrNonZeroExit
}

// ErrorInfo provides user-friendly error information.
type ErrorInfo struct {
	Message     string   // User-friendly message
	Suggestions []string // Actionable suggestions
}

type outputMatcher struct {
	patterns []string
	info     ErrorInfo
}

// getOutputMatchers returns apt/dpkg output patterns and their explanations.
func getOutputMatchers() []outputMatcher {
	return []outputMatcher{
		{
			patterns: []string{"could not get lock", "unable to acquire the dpkg frontend lock", "is another process using it"},
			info: ErrorInfo{
				Message:     "Another package manager is running",
				Suggestions: []string{"Wait for other updates to finish", "Close Software Updater or Synaptic and retry"},
			},
		},
		{
			patterns: []string{"not a debian format archive", "not a debian archive"},
			info: ErrorInfo{
				Message:     "The file is not a valid Debian package",
				Suggestions: []string{"Download the package again"},
			},
		},
		{
			patterns: []string{"unmet dependencies", "depends:", "broken packages"},
			info: ErrorInfo{
				Message:     "Missing dependencies",
				Suggestions: []string{"Try: sudo apt --fix-broken install", "Update package lists: sudo apt update"},
			},
		},
		{
			patterns: []string{"unable to locate package", "is not installed"},
			info: ErrorInfo{
				Message:     "Package not found",
				Suggestions: []string{"Check that the package is installed"},
			},
		},
		{
			patterns: []string{"not authorized", "authentication", "request dismissed"},
			info: ErrorInfo{
				Message:     "Authorization was not granted",
				Suggestions: []string{"Retry and enter your password when asked"},
			},
		},
		{
			patterns: []string{"no space left on device"},
			info: ErrorInfo{
				Message:     "Insufficient disk space",
				Suggestions: []string{"Free up disk space and retry"},
			},
		},
	}
}

// DiagnoseOutput inspects captured package manager output and exit code and
// explains the most likely cause of a failure.
func DiagnoseOutput(output string, exitCode int) ErrorInfo {
	if exitCode == PkexecNotAuthorized || exitCode == PkexecDismissed {
		return ErrorInfo{
			Message:     "Authorization was not granted",
			Suggestions: []string{"Retry and enter your password when asked"},
		}
	}

	lower := strings.ToLower(output)

	for _, matcher := range getOutputMatchers() {
		for _, pattern := range matcher.patterns {
			if strings.Contains(lower, pattern) {
				return matcher.info
			}
		}
	}

	return ErrorInfo{
		Message:     "Operation failed",
		Suggestions: []string{"Review the output above for details"},
	}
}

// FormatDiagnosis formats a diagnosis for display.
func FormatDiagnosis(info ErrorInfo, verbose bool) string {
	var result strings.Builder

	result.WriteString("✗ ")
	result.WriteString(info.Message)

	if len(info.Suggestions) == 0 {
		return result.String()
	}

	if !verbose {
		result.WriteString(" (")
		result.WriteString(info.Suggestions[0])
		result.WriteString(")")

		return result.String()
	}

	result.WriteString("\n  Suggestions:")

	for _, suggestion := range info.Suggestions {
		result.WriteString("\n    • ")
		result.WriteString(suggestion)
	}

	return result.String()
}
