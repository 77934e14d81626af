// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"context"
)

// LineHandler receives one line of subprocess output, newline included.
type LineHandler func(line string)

// ProcessStreamer defines the interface for running a shell command line while
// streaming its merged output.
type ProcessStreamer interface {
	// Stream runs commandLine, calls onLine for every output line as soon as it
	// is read and returns the exit code once the output ends. A spawn failure
	// returns an error wrapping ErrProcessStart and produces no lines.
	Stream(ctx context.Context, commandLine string, onLine LineHandler) (int, error)
}

// CommandRunner defines the interface for executing short-lived system commands.
type CommandRunner interface {
	// ExecuteWithOutput runs a command and returns its standard output.
	ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error)

	// ExecuteShell runs a shell pipeline and returns its standard output.
	ExecuteShell(ctx context.Context, script string) (string, error)

	// CommandExists checks if a command is available on the system.
	CommandExists(name string) bool
}

// MetadataReader defines the interface for inspecting a package file.
type MetadataReader interface {
	// Read returns what is known about the package file at path.
	Read(ctx context.Context, path string) (*PackageInfo, error)
}

// CommandBuilder turns an operation request into a shell command line.
type CommandBuilder interface {
	CommandLine(req OperationRequest) (string, error)
}

// Notifier defines the interface the operation controller reports through.
// Calls come from the worker goroutine and must not block.
type Notifier interface {
	Progress(generation uint64)
	Finished(generation uint64)
}
