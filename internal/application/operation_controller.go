// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package application contains the services that drive package operations.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/janderssonse/debwiz/internal/logging"
	"github.com/sirupsen/logrus"
)

// Final status phrases.
const (
	StatusRemoved       = "Successfully removed."
	StatusRemovalFailed = "Removal failed."
	StatusComplete      = "Operation Complete!"
	StatusInstallFailed = "Operation cancelled or failed."
)

const (
	// The first percentage line of an operation is always published, even 0%.
	initialLastFraction = -1.0
	unknownExitCode     = -1
)

// OperationController runs at most one install or uninstall at a time on a
// worker goroutine and publishes its progress as snapshots.
//
// All state shared with the worker lives behind mu. The notifier is called
// after mu is released, so consumers may read Snapshot from their handler.
type OperationController struct {
	streamer domain.ProcessStreamer
	builder  domain.CommandBuilder
	notifier domain.Notifier
	logger   *logrus.Entry
	parse    func(kind domain.OperationKind, line string, lastFraction float64) domain.ProgressEvent

	mu           sync.Mutex
	snap         domain.Snapshot
	output       strings.Builder
	lastFraction float64

	worker sync.WaitGroup
}

// NewOperationController creates an idle controller.
func NewOperationController(streamer domain.ProcessStreamer, builder domain.CommandBuilder, notifier domain.Notifier) *OperationController {
	return &OperationController{
		streamer:     streamer,
		builder:      builder,
		notifier:     notifier,
		logger:       logging.NewLogger("controller"),
		parse:        domain.ParseLine,
		lastFraction: initialLastFraction,
	}
}

// Start launches req on a new worker goroutine and returns immediately.
// It fails with ErrOperationRunning, leaving the snapshot untouched, while
// another operation is in flight.
func (c *OperationController) Start(ctx context.Context, req domain.OperationRequest) error {
	commandLine, err := c.builder.CommandLine(req)
	if err != nil {
		return fmt.Errorf("failed to build command: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap.State == domain.StateRunning {
		return domain.ErrOperationRunning
	}

	// The previous worker has published its terminal state and no longer
	// touches mu, so joining it here cannot deadlock.
	c.worker.Wait()

	c.output.Reset()
	c.lastFraction = initialLastFraction
	c.snap = domain.Snapshot{
		Kind:       req.Kind,
		Target:     req.Target,
		Status:     req.Kind.InitialStatus(),
		State:      domain.StateRunning,
		Generation: c.snap.Generation + 1,
	}

	log := c.logger.WithFields(logrus.Fields{
		"kind":       req.Kind.String(),
		"target":     req.Target,
		"generation": c.snap.Generation,
	})
	log.Info("Operation started")

	c.worker.Add(1)

	go c.run(ctx, c.snap.Generation, req.Kind, commandLine, log)

	return nil
}

// Snapshot returns a consistent copy of the current or last operation.
func (c *OperationController) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snap
}

// Result returns the snapshot of a finished operation.
func (c *OperationController) Result() (domain.Snapshot, error) {
	snap := c.Snapshot()
	if !snap.State.IsTerminal() {
		return snap, domain.ErrNotTerminal
	}

	return snap, nil
}

// Wait blocks until the current worker, if any, has exited.
func (c *OperationController) Wait() {
	c.worker.Wait()
}

// Acknowledge returns a finished controller to Idle. The last fraction,
// status and output stay readable.
func (c *OperationController) Acknowledge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap.State == domain.StateRunning {
		return domain.ErrOperationRunning
	}

	c.snap.State = domain.StateIdle

	return nil
}

// Cancel reports whether a pending operation may still be abandoned. A
// running operation cannot be interrupted.
func (c *OperationController) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap.State == domain.StateRunning {
		return domain.ErrOperationRunning
	}

	return nil
}

func (c *OperationController) run(ctx context.Context, generation uint64, kind domain.OperationKind, commandLine string, log *logrus.Entry) {
	defer c.worker.Done()

	started := time.Now()

	exitCode, err := c.stream(ctx, generation, kind, commandLine)

	snap := c.finish(kind, exitCode, err)

	fields := logrus.Fields{
		"exit_code": snap.ExitCode,
		"state":     snap.State.String(),
		"duration":  time.Since(started).Round(time.Millisecond).String(),
	}

	switch {
	case err != nil:
		log.WithFields(fields).WithError(err).Error("Operation failed")
	case snap.State == domain.StateFailed:
		log.WithFields(fields).Warn("Operation failed")
	default:
		log.WithFields(fields).Info("Operation finished")
	}

	c.notifier.Finished(generation)
}

// stream runs the command and turns a panic anywhere below it into an error.
func (c *OperationController) stream(ctx context.Context, generation uint64, kind domain.OperationKind, commandLine string) (exitCode int, err error) {
	defer func() {
		if r := recover(); r != nil {
			exitCode = unknownExitCode
			err = fmt.Errorf("%w: %v", domain.ErrWorkerPanic, r)
		}
	}()

	return c.streamer.Stream(ctx, commandLine, func(line string) {
		c.handleLine(generation, kind, line)
	})
}

func (c *OperationController) handleLine(generation uint64, kind domain.OperationKind, line string) {
	event := c.applyLine(kind, line)

	if !event.IsEmpty() {
		c.notifier.Progress(generation)

		return
	}

	if c.logger.Logger.IsLevelEnabled(logrus.TraceLevel) {
		c.logger.WithFields(logrus.Fields{
			"generation": generation,
			"phrase":     domain.StatusFor(kind, line),
		}).Trace("Line not published")
	}
}

// applyLine records line in the snapshot. mu is released even if parsing
// panics, so the worker can still publish a terminal state.
func (c *OperationController) applyLine(kind domain.OperationKind, line string) domain.ProgressEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.output.WriteString(line)
	c.snap.Output = c.output.String()

	event := c.parse(kind, line, c.lastFraction)
	if event.HasFraction {
		c.lastFraction = event.Fraction
		c.snap.Fraction = event.Fraction
	}

	if event.HasStatus() {
		c.snap.Status = event.Status
	}

	return event
}

// finish moves the snapshot into its terminal state and returns a copy.
func (c *OperationController) finish(kind domain.OperationKind, exitCode int, err error) domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap.ExitCode = exitCode

	switch {
	case errors.Is(err, domain.ErrProcessStart):
		c.output.Reset()
		c.output.WriteString(kind.StartFailureMessage())
		c.snap.State = domain.StateFailed
	case err != nil:
		if c.output.Len() > 0 {
			c.output.WriteString("\n")
		}

		c.output.WriteString(err.Error())
		c.snap.State = domain.StateFailed
	case exitCode == 0:
		c.snap.State = domain.StateSucceeded
	default:
		c.snap.State = domain.StateFailed
	}

	c.snap.Output = c.output.String()

	switch {
	case kind == domain.OperationUninstall && c.snap.State == domain.StateSucceeded:
		c.snap.Status = StatusRemoved
	case kind == domain.OperationUninstall:
		c.snap.Status = StatusRemovalFailed
	case c.snap.State == domain.StateFailed && c.snap.Status == "":
		c.snap.Status = StatusInstallFailed
	case c.snap.State == domain.StateSucceeded && c.snap.Status == "":
		c.snap.Status = StatusComplete
	}

	return c.snap
}

// SnapshotError converts a failed snapshot into an error carrying its exit code.
func SnapshotError(snap domain.Snapshot) error {
	if snap.State != domain.StateFailed {
		return nil
	}

	return &domain.ExitCodeError{Code: snap.ExitCode}
}
