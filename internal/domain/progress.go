// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// minFractionStep is the smallest fraction increase worth publishing.
const minFractionStep = 0.01

var percentPattern = regexp.MustCompile(`\[?\s*(\d+)%\s*\]?`)

// StatusPhrase maps a keyword found in apt output to a status shown to the user.
type StatusPhrase struct {
	Keyword string
	Phrase  string
}

// Keyword tables for apt-get output, checked in order. apt's phrasing is an
// external contract, so changes here should come with test updates.
var (
	InstallPhrases = []StatusPhrase{ //nolint:gochecknoglobals
		{Keyword: "Reading", Phrase: "Reading package lists..."},
		{Keyword: "Unpacking", Phrase: "Unpacking packages..."},
		{Keyword: "Setting up", Phrase: "Setting up packages..."},
		{Keyword: "Processing", Phrase: "Processing triggers..."},
	}

	UninstallPhrases = []StatusPhrase{ //nolint:gochecknoglobals
		{Keyword: "Reading", Phrase: "Reading package lists..."},
		{Keyword: "Removing", Phrase: "Removing packages..."},
		{Keyword: "Processing", Phrase: "Processing triggers..."},
	}
)

// ProgressEvent is what a single output line contributes to the progress display.
// The zero value means the line carried nothing of interest.
type ProgressEvent struct {
	Fraction    float64
	HasFraction bool
	Status      string
}

// HasStatus reports whether the event carries a status phrase.
func (e ProgressEvent) HasStatus() bool {
	return e.Status != ""
}

// IsEmpty reports whether the line should only go to the output log.
func (e ProgressEvent) IsEmpty() bool {
	return !e.HasFraction && !e.HasStatus()
}

// ParseLine classifies one line of package manager output.
//
// A percentage is published only when it moved at least one point past
// lastFraction, or when it reaches 100%. The status phrase travels with a
// published fraction; lines whose fraction is suppressed yield no status either.
// Lines without a percentage that mention "Reading" or "Preparing" produce a
// status-only event.
func ParseLine(kind OperationKind, line string, lastFraction float64) ProgressEvent {
	if fraction, ok := extractFraction(line); ok {
		if fraction-lastFraction >= minFractionStep || fraction == 1.0 {
			return ProgressEvent{
				Fraction:    fraction,
				HasFraction: true,
				Status:      StatusFor(kind, line),
			}
		}

		return ProgressEvent{}
	}

	if strings.Contains(line, "Reading") || strings.Contains(line, "Preparing") {
		return ProgressEvent{Status: preparingPhrase(kind)}
	}

	return ProgressEvent{}
}

// StatusFor returns the status phrase a progress line maps to, regardless of
// whether its fraction would be published.
func StatusFor(kind OperationKind, line string) string {
	for _, entry := range phrasesFor(kind) {
		if strings.Contains(line, entry.Keyword) {
			return entry.Phrase
		}
	}

	if kind == OperationUninstall {
		return "Uninstalling..."
	}

	return "Installing..."
}

func phrasesFor(kind OperationKind) []StatusPhrase {
	if kind == OperationUninstall {
		return UninstallPhrases
	}

	return InstallPhrases
}

func preparingPhrase(kind OperationKind) string {
	if kind == OperationUninstall {
		return "Preparing removal..."
	}

	return "Preparing installation..."
}

func extractFraction(line string) (float64, bool) {
	match := percentPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}

	percent, err := strconv.Atoi(match[1])
	if err != nil {
		// Digit runs too long for an int are not progress.
		return 0, false
	}

	return float64(percent) / 100.0, true
}
