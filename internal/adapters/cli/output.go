// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli provides the stdout adapter for headless command results.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/janderssonse/debwiz/internal/domain"
)

var _ domain.OutputPort = (*OutputAdapter)(nil)

// OutputAdapter implements domain.OutputPort for CLI output.
type OutputAdapter struct {
	writer io.Writer
	format OutputFormat
	quiet  bool
}

// OutputFormat represents the output format type.
type OutputFormat int

const (
	// TextFormat outputs human-readable text.
	TextFormat OutputFormat = iota
	// JSONFormat outputs machine-readable JSON.
	JSONFormat
)

// NewOutputAdapterWithWriter creates a new output adapter with a custom writer for testing.
func NewOutputAdapterWithWriter(writer io.Writer, format OutputFormat, quiet bool) *OutputAdapter {
	return &OutputAdapter{
		writer: writer,
		format: format,
		quiet:  quiet,
	}
}

// Success outputs a success message with optional structured data.
func (o *OutputAdapter) Success(message string, data any) error {
	if o.quiet && data == nil {
		return nil
	}

	if o.format == JSONFormat && data != nil {
		return o.outputJSON(data)
	}

	if message != "" && !o.quiet {
		_, _ = fmt.Fprintln(o.writer, message)
	}

	return nil
}

// Progress emits one JSON progress record per update. Human-readable progress
// is drawn on stderr by the console package, so text mode writes nothing here.
func (o *OutputAdapter) Progress(fraction float64, status string) error {
	if o.quiet || o.format != JSONFormat {
		return nil
	}

	record := progressRecord{
		Type:     "progress",
		Fraction: fraction,
		Status:   status,
	}

	return json.NewEncoder(o.writer).Encode(record)
}

// Package writes package metadata as a key/value table or JSON object.
func (o *OutputAdapter) Package(info *domain.PackageInfo) error {
	if o.format == JSONFormat {
		return o.outputJSON(info)
	}

	if o.quiet {
		return nil
	}

	installed := "no"
	if info.Installed {
		installed = "yes"
	}

	license := "none"
	if info.HasLicense() {
		license = "included"
	}

	icon := "none"
	if info.Icon != "" {
		icon = info.Icon
	}

	return o.Table([]string{"FIELD", "VALUE"}, [][]string{
		{"Name", info.DisplayName()},
		{"Version", info.Version},
		{"Summary", info.Summary()},
		{"Installed", installed},
		{"License", license},
		{"Icon", icon},
		{"File", info.Path},
	})
}

type progressRecord struct {
	Type     string  `json:"type"`
	Fraction float64 `json:"fraction"`
	Status   string  `json:"status"`
}

// Table outputs tabular data.
func (o *OutputAdapter) Table(headers []string, rows [][]string) error {
	if o.quiet {
		return nil
	}

	if o.format == JSONFormat {
		tableData := map[string]any{
			"headers": headers,
			"rows":    rows,
		}

		return o.outputJSON(tableData)
	}

	w := tabwriter.NewWriter(o.writer, 0, 0, 2, ' ', 0)

	defer func() { _ = w.Flush() }()

	// Print headers
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))

	// Print separator
	separators := make([]string, len(headers))
	for i := range headers {
		separators[i] = strings.Repeat("-", len(headers[i]))
	}

	_, _ = fmt.Fprintln(w, strings.Join(separators, "\t"))

	// Print rows
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return nil
}

// outputJSON outputs data as JSON.
func (o *OutputAdapter) outputJSON(data any) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(data)
}

// OutputFromFlags creates an OutputAdapter for the global --json and --quiet
// flags. A nil writer selects stdout.
func OutputFromFlags(writer io.Writer, jsonFlag, quietFlag bool) *OutputAdapter {
	format := TextFormat
	if jsonFlag {
		format = JSONFormat
	}

	if writer == nil {
		writer = os.Stdout
	}

	return NewOutputAdapterWithWriter(writer, format, quietFlag)
}
