// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import "time"

// OutputPort presents command results on stdout. Adapters decide between
// human-readable text and JSON records.
type OutputPort interface {
	// Success reports a finished command. Data is preferred over the message
	// when the adapter emits structured output.
	Success(message string, data any) error

	// Progress reports the fraction and status of a running operation.
	Progress(fraction float64, status string) error

	// Package presents the metadata read from a package file.
	Package(info *PackageInfo) error

	Table(headers []string, rows [][]string) error
}

// OperationResult represents the outcome of an install or uninstall run.
type OperationResult struct {
	Operation string        `json:"operation"`
	Package   string        `json:"package"`
	Success   bool          `json:"success"`
	ExitCode  int           `json:"exit_code"`
	Status    string        `json:"status"`
	Output    string        `json:"output,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewOperationResult builds a result from a terminal snapshot.
func NewOperationResult(snap Snapshot, name string, duration time.Duration) *OperationResult {
	result := &OperationResult{
		Operation: snap.Kind.String(),
		Package:   name,
		Success:   snap.State == StateSucceeded,
		ExitCode:  snap.ExitCode,
		Status:    snap.Status,
		Duration:  duration,
		Timestamp: time.Now(),
	}

	// Output is only useful to diagnose failures.
	if !result.Success {
		result.Output = snap.Output
	}

	return result
}
