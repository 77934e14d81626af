// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package console formats headless command output for terminals, pipes and
// machine readers.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"golang.org/x/term"
)

// OutputState holds global output configuration.
type OutputState struct {
	Verbose bool
	JSON    bool
	Plain   bool
	Quiet   bool

	// Stdout and Stderr default to the process streams when nil.
	Stdout io.Writer
	Stderr io.Writer
}

// SetMode configures output mode.
func (o *OutputState) SetMode(verbose, json, plain, quiet bool) {
	o.Verbose = verbose
	o.JSON = json
	o.Plain = plain
	o.Quiet = quiet
}

func (o *OutputState) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}

	return os.Stdout
}

func (o *OutputState) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}

	return os.Stderr
}

// IsTTY checks if output is going to a terminal (not piped/redirected).
func (o *OutputState) IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// interactive reports whether stderr is a terminal that can redraw a line.
func (o *OutputState) interactive() bool {
	if o.Stderr != nil {
		return false
	}

	return o.IsTTY(os.Stderr.Fd())
}

// Progressf writes progress messages to stderr (only if verbose and not JSON/Plain).
func (o *OutputState) Progressf(format string, args ...any) {
	if o.Verbose && !o.JSON && !o.Plain {
		_, _ = fmt.Fprintf(o.stderr(), format+"\n", args...)
	}
}

// Percent reports operation progress on stderr. Terminals get a single
// redrawn line, everything else one line per update.
func (o *OutputState) Percent(fraction float64, status string) {
	if o.JSON || o.Quiet {
		return
	}

	percent := int(fraction*100 + 0.5)

	switch {
	case o.Plain:
		_, _ = fmt.Fprintf(o.stderr(), "progress:%d:%s\n", percent, status)
	case o.interactive():
		_, _ = fmt.Fprintf(o.stderr(), "\r\033[K[%3d%%] %s", percent, status)
	default:
		_, _ = fmt.Fprintf(o.stderr(), "[%3d%%] %s\n", percent, status)
	}
}

// EndPercent terminates a redrawn progress line.
func (o *OutputState) EndPercent() {
	if !o.JSON && !o.Quiet && !o.Plain && o.interactive() {
		_, _ = fmt.Fprintln(o.stderr())
	}
}

// Successf writes success messages to stderr (only if not JSON/Plain).
func (o *OutputState) Successf(format string, args ...any) {
	if !o.JSON && !o.Plain && !o.Quiet {
		_, _ = fmt.Fprintf(o.stderr(), "✓ "+format+"\n", args...)
	}
}

// Warningf writes warning messages to stderr (always visible unless plain mode).
func (o *OutputState) Warningf(format string, args ...any) {
	if o.Plain {
		_, _ = fmt.Fprintf(o.stderr(), "warning: "+format+"\n", args...)
	} else {
		_, _ = fmt.Fprintf(o.stderr(), "⚠ "+format+"\n", args...)
	}
}

// Errorf writes error messages to stderr (always visible).
func (o *OutputState) Errorf(format string, args ...any) {
	if o.Plain {
		_, _ = fmt.Fprintf(o.stderr(), "error: "+format+"\n", args...)
	} else {
		_, _ = fmt.Fprintf(o.stderr(), "✗ "+format+"\n", args...)
	}
}

// Hintf writes an indented suggestion below an error (hidden in JSON mode).
func (o *OutputState) Hintf(format string, args ...any) {
	switch {
	case o.JSON:
	case o.Plain:
		_, _ = fmt.Fprintf(o.stderr(), "hint: "+format+"\n", args...)
	default:
		_, _ = fmt.Fprintf(o.stderr(), "  → "+format+"\n", args...)
	}
}

// Transcript writes captured subprocess output to stderr, indented in
// human-readable modes.
func (o *OutputState) Transcript(output string) {
	output = strings.TrimRight(output, "\n")
	if output == "" || o.JSON {
		return
	}

	if o.Plain {
		_, _ = fmt.Fprintln(o.stderr(), output)

		return
	}

	for _, line := range strings.Split(output, "\n") {
		_, _ = fmt.Fprintln(o.stderr(), "  "+line)
	}
}

// Result writes command results to stdout (machine-readable primary output).
func (o *OutputState) Result(data any) {
	_, _ = fmt.Fprintf(o.stdout(), "%v\n", data)
}

// JSONResult writes structured JSON results to stdout.
func (o *OutputState) JSONResult(status string, data map[string]any) {
	result := map[string]any{
		"status": status,
	}
	maps.Copy(result, data)

	if err := json.NewEncoder(o.stdout()).Encode(result); err != nil {
		// Best effort - output encoding errors shouldn't crash the program
		_, _ = fmt.Fprintf(o.stderr(), "error encoding JSON: %v\n", err)
	}
}

// PlainKeyValue outputs key:value pairs for machine parsing.
func (o *OutputState) PlainKeyValue(key, value string) {
	_, _ = fmt.Fprintf(o.stdout(), "%s:%s\n", key, value)
}

// PlainValue outputs a single value.
func (o *OutputState) PlainValue(value string) {
	_, _ = fmt.Fprintf(o.stdout(), "%s\n", value)
}
