// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"fmt"
	"strings"
)

// OperationKind selects the command template and status vocabulary of an operation.
type OperationKind int

// Supported operation kinds.
const (
	OperationInstall OperationKind = iota
	OperationUninstall
)

func (k OperationKind) String() string {
	switch k {
	case OperationInstall:
		return "install"
	case OperationUninstall:
		return "uninstall"
	default:
		return fmt.Sprintf("OperationKind(%d)", int(k))
	}
}

// InitialStatus is the status shown while the elevation helper asks for authorization.
func (k OperationKind) InitialStatus() string {
	if k == OperationUninstall {
		return "Authenticating removal..."
	}

	return "Authenticating..."
}

// StartFailureMessage is placed in the output log when the subprocess cannot be spawned.
func (k OperationKind) StartFailureMessage() string {
	if k == OperationUninstall {
		return "Failed to start removal process."
	}

	return "Failed to start installation process."
}

// OperationRequest is an immutable request to install or uninstall one package.
// Target is the absolute .deb path for installs and the package name for removals.
type OperationRequest struct {
	Kind   OperationKind
	Target string
}

// Validate checks that the request can be turned into a command line.
func (r OperationRequest) Validate() error {
	target := strings.TrimSpace(r.Target)
	if target == "" {
		return fmt.Errorf("%w: empty target", ErrInvalidRequest)
	}

	if strings.ContainsAny(target, "\n\r") {
		return fmt.Errorf("%w: target contains a line break", ErrInvalidRequest)
	}

	switch r.Kind {
	case OperationInstall, OperationUninstall:
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %s", ErrInvalidRequest, r.Kind)
	}
}

// OperationState is the lifecycle state of the controller.
type OperationState int

// Operation states. Succeeded and Failed are terminal until the next start.
const (
	StateIdle OperationState = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s OperationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("OperationState(%d)", int(s))
	}
}

// IsTerminal reports whether the state ends an operation.
func (s OperationState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Snapshot is a consistent copy of the state of the current or last operation.
type Snapshot struct {
	Kind       OperationKind
	Target     string
	Fraction   float64
	Status     string
	Output     string
	State      OperationState
	ExitCode   int
	Generation uint64
}

// DisplayFraction is the fraction a progress bar shows: full once the
// operation succeeded, the last published fraction otherwise.
func (s Snapshot) DisplayFraction() float64 {
	if s.State == StateSucceeded {
		return 1
	}

	return s.Fraction
}
