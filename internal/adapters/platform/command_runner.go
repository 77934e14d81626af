// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package platform provides shared command execution functionality.
package platform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/janderssonse/debwiz/internal/logging"
	"github.com/sirupsen/logrus"
)

// DefaultShell interprets command lines passed to Stream and ExecuteShell.
const DefaultShell = "/bin/sh"

// CommandRunner implements the ProcessStreamer and CommandRunner ports for real system commands.
type CommandRunner struct {
	verbose bool
	dryRun  bool
	shell   string
	logger  *logrus.Entry
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(verbose, dryRun bool) *CommandRunner {
	return &CommandRunner{
		verbose: verbose,
		dryRun:  dryRun,
		shell:   DefaultShell,
		logger:  logging.NewLogger("runner"),
	}
}

// WithShell returns a copy of the runner that uses another shell binary.
func (r *CommandRunner) WithShell(shell string) *CommandRunner {
	clone := *r
	clone.shell = shell

	return &clone
}

// Stream runs commandLine through the shell with stderr merged into stdout and
// hands each line to onLine as soon as it is read.
//
// The context only guards the spawn. A privileged package manager run is never
// interrupted halfway, so once started the process always runs to completion.
func (r *CommandRunner) Stream(ctx context.Context, commandLine string, onLine domain.LineHandler) (int, error) {
	log := r.logger.WithField("command", commandLine)

	if r.dryRun {
		log.Info("Dry run, command not executed")
		onLine("DRY RUN: " + commandLine + "\n")

		return 0, nil
	}

	if err := ctx.Err(); err != nil {
		return -1, fmt.Errorf("%w: %w", domain.ErrProcessStart, err)
	}

	// #nosec G204 - command lines come from fixed templates with validated targets
	cmd := exec.Command(r.shell, "-c", commandLine)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("%w: %w", domain.ErrProcessStart, err)
	}

	cmd.Stderr = cmd.Stdout

	if r.verbose {
		log.Info("Executing")
	} else {
		log.Debug("Executing")
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("%w: %w", domain.ErrProcessStart, err)
	}

	lines := readLines(stdout, onLine)
	if lines.err != nil {
		log.WithError(lines.err).Warn("Output stream ended with an error")
	}

	exitCode, err := exitCodeOf(cmd.Wait())

	log.WithFields(logrus.Fields{
		"exit_code": exitCode,
		"lines":     lines.count,
	}).Debug("Process finished")

	return exitCode, err
}

type readResult struct {
	count int
	err   error
}

// readLines forwards every line, newline included, until the stream ends.
// A last line without a trailing newline is forwarded as well.
func readLines(reader io.Reader, onLine domain.LineHandler) readResult {
	buffered := bufio.NewReader(reader)

	var result readResult

	for {
		line, err := buffered.ReadString('\n')
		if line != "" {
			result.count++

			onLine(line)
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				result.err = err
			}

			return result
		}
	}
}

func exitCodeOf(waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, fmt.Errorf("failed to wait for process: %w", waitErr)
}

// ExecuteWithOutput runs a command and returns the output.
func (r *CommandRunner) ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error) {
	r.logger.WithField("command", name+" "+strings.Join(args, " ")).Debug("Executing (with output)")

	cmd := exec.CommandContext(ctx, name, args...)

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("command failed: %w", err)
	}

	return string(output), nil
}

// ExecuteShell runs a shell pipeline and returns its output.
func (r *CommandRunner) ExecuteShell(ctx context.Context, script string) (string, error) {
	r.logger.WithField("command", script).Debug("Executing shell pipeline")

	// #nosec G204 - pipelines are built from quoted arguments
	cmd := exec.CommandContext(ctx, r.shell, "-c", script)

	output, err := cmd.Output()
	if err != nil {
		return string(output), fmt.Errorf("command failed: %w", err)
	}

	return string(output), nil
}

// CommandExists checks if a command is available on the system.
func (r *CommandRunner) CommandExists(name string) bool {
	_, err := exec.LookPath(name)

	return err == nil
}
