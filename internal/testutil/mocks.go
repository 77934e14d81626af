// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package testutil provides mocks and fakes of the domain ports for tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/janderssonse/debwiz/internal/notify"
	"github.com/stretchr/testify/mock"
)

// MockCommandRunner is a mock implementation of CommandRunner port.
type MockCommandRunner struct {
	mock.Mock
}

// ExecuteWithOutput mocks command execution with output.
func (m *MockCommandRunner) ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error) {
	// Convert variadic args to interface slice for mock.Called
	callArgs := make([]interface{}, 0, len(args)+2)

	callArgs = append(callArgs, ctx, name)
	for _, arg := range args {
		callArgs = append(callArgs, arg)
	}

	returnArgs := m.Called(callArgs...)

	return returnArgs.String(0), returnArgs.Error(1)
}

// ExecuteShell mocks running a shell pipeline.
func (m *MockCommandRunner) ExecuteShell(ctx context.Context, script string) (string, error) {
	args := m.Called(ctx, script)
	return args.String(0), args.Error(1)
}

// CommandExists mocks checking if a command exists.
func (m *MockCommandRunner) CommandExists(name string) bool {
	args := m.Called(name)
	return args.Bool(0)
}

// MockMetadataReader is a mock implementation of MetadataReader port.
type MockMetadataReader struct {
	mock.Mock
}

// Read mocks reading package metadata.
func (m *MockMetadataReader) Read(ctx context.Context, path string) (*domain.PackageInfo, error) {
	args := m.Called(ctx, path)
	if result := args.Get(0); result != nil {
		info, ok := result.(*domain.PackageInfo)
		if !ok {
			return nil, args.Error(1)
		}

		return info, args.Error(1)
	}

	return nil, args.Error(1)
}

// ScriptedStreamer is a ProcessStreamer that replays fixed output.
type ScriptedStreamer struct {
	Lines    []string
	ExitCode int
	Err      error
	// Panic, when set, is raised after the lines were replayed.
	Panic any
	// Gate, when set, holds the stream open until it is closed or receives.
	Gate chan struct{}
	// Started is closed, when set, as soon as Stream is first entered.
	Started chan struct{}

	mu        sync.Mutex
	startOnce sync.Once
	commands  []string
}

// Stream replays the scripted lines.
func (s *ScriptedStreamer) Stream(_ context.Context, commandLine string, onLine domain.LineHandler) (int, error) {
	s.mu.Lock()
	s.commands = append(s.commands, commandLine)
	s.mu.Unlock()

	if s.Started != nil {
		s.startOnce.Do(func() { close(s.Started) })
	}

	if s.Err != nil {
		return -1, s.Err
	}

	for _, line := range s.Lines {
		onLine(line)
	}

	if s.Gate != nil {
		<-s.Gate
	}

	if s.Panic != nil {
		panic(s.Panic)
	}

	return s.ExitCode, nil
}

// Commands returns the command lines Stream was called with.
func (s *ScriptedStreamer) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.commands...)
}

// RecordingNotifier records every notification in order.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

// Progress records a progress notification.
func (r *RecordingNotifier) Progress(generation uint64) {
	r.record(notify.Event{Kind: notify.KindProgress, Generation: generation})
}

// Finished records a completion notification.
func (r *RecordingNotifier) Finished(generation uint64) {
	r.record(notify.Event{Kind: notify.KindFinished, Generation: generation})
}

func (r *RecordingNotifier) record(event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

// Events returns a copy of the recorded notifications.
func (r *RecordingNotifier) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]notify.Event(nil), r.events...)
}

// Count returns how many notifications of kind were recorded.
func (r *RecordingNotifier) Count(kind notify.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0

	for _, event := range r.events {
		if event.Kind == kind {
			count++
		}
	}

	return count
}

// CreateTestPackageInfo returns metadata of a typical package file.
func CreateTestPackageInfo(name string) *domain.PackageInfo {
	return &domain.PackageInfo{
		Path:        "/tmp/" + name + "_1.0_amd64.deb",
		Name:        name,
		Version:     "1.0",
		Description: name + " test package\n Longer description.",
	}
}

// WaitWithTimeout runs a function with a timeout.
func WaitWithTimeout(fn func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return true
		}

		time.Sleep(10 * time.Millisecond)
	}

	return false
}
