// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package logging provides component loggers that write to a log file, so that
// structured logs never interfere with the terminal owned by the wizard.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// LevelEnv overrides the configured log level.
const LevelEnv = "DEBWIZ_LOG_LEVEL"

// Config controls log level, format and sinks.
type Config struct {
	// Level is the minimum level written: debug, info, warn or error.
	Level string `toml:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error"`
	// Format is "text" (default) or "json".
	Format string `toml:"format" jsonschema:"enum=text,enum=json"`
	// File is the log file path. Empty disables the file sink.
	File string `toml:"file" jsonschema:"description=Log file path; ~ and $XDG_STATE_HOME are expanded"`
	// Stderr also writes logs to stderr. Never set while the TUI is running.
	Stderr bool `toml:"-"`
}

var (
	base    = newBase() //nolint:gochecknoglobals
	loggers = make(map[string]*logrus.Entry)
	mu      sync.Mutex
	sink    io.Closer
)

func newBase() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.InfoLevel)

	return logger
}

// Configure applies cfg to every logger handed out by NewLogger.
func Configure(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	levelStr := "info"
	if env := os.Getenv(LevelEnv); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	base.SetLevel(level)

	if cfg.Format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		// Colors only when stderr is the sole sink, never inside the log file.
		colors := cfg.Stderr && cfg.File == "" && stderrIsTerminal()
		base.SetFormatter(&logrus.TextFormatter{
			DisableColors: !colors,
			ForceColors:   colors,
			FullTimestamp: true,
		})
	}

	var writers []io.Writer

	if cfg.File != "" {
		file, err := openLogFile(cfg.File)
		if err != nil {
			return err
		}

		_ = closeSinkLocked()

		sink = file

		writers = append(writers, file)
	}

	if cfg.Stderr {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		base.SetOutput(io.Discard)
	case 1:
		base.SetOutput(writers[0])
	default:
		base.SetOutput(io.MultiWriter(writers...))
	}

	return nil
}

// NewLogger returns the logger for a component, creating it on first use.
func NewLogger(component string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	entry := base.WithField("component", component)
	loggers[component] = entry

	return entry
}

// SetOutput redirects all component loggers, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	base.SetOutput(w)
}

// Close releases the log file, if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	return closeSinkLocked()
}

func closeSinkLocked() error {
	if sink == nil {
		return nil
	}

	err := sink.Close()
	sink = nil

	return err
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return file, nil
}

func stderrIsTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
