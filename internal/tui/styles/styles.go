// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package styles defines consistent visual styling for the wizard pages.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/janderssonse/debwiz/internal/domain"
)

// Styles contains all the styles used in the TUI.
type Styles struct {
	Header         lipgloss.Style
	Title          lipgloss.Style
	Card           lipgloss.Style
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	LogBox         lipgloss.Style

	// Text styles (cached for performance)
	MutedText   lipgloss.Style
	PrimaryText lipgloss.Style
	SuccessText lipgloss.Style
	ErrorText   lipgloss.Style
	WarningText lipgloss.Style
	KeyText     lipgloss.Style

	Container lipgloss.Style
}

// New creates a new Styles instance with the Tokyo Night palette.
func New() *Styles {
	primary := lipgloss.Color("#7aa2f7")    // Blue
	success := lipgloss.Color("#9ece6a")    // Green
	warning := lipgloss.Color("#e0af68")    // Yellow
	errorColor := lipgloss.Color("#f7768e") // Red
	muted := lipgloss.Color("#565f89")      // Gray

	background := lipgloss.Color("#1a1b26")
	foreground := lipgloss.Color("#c0caf5")

	return &Styles{
		Header: lipgloss.NewStyle().
			Background(primary).
			Foreground(background).
			Bold(true).
			Padding(0, 1).
			MarginBottom(1),

		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(1, 2).
			MarginBottom(1),

		Button: lipgloss.NewStyle().
			Foreground(foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 2).
			MarginRight(1),

		ButtonFocused: lipgloss.NewStyle().
			Background(primary).
			Foreground(background).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 2).
			MarginRight(1),

		ButtonDisabled: lipgloss.NewStyle().
			Foreground(muted).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 2).
			MarginRight(1).
			Strikethrough(true),

		// Monospace error log, scrolled through a viewport.
		LogBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(errorColor).
			Padding(0, 1),

		MutedText:   lipgloss.NewStyle().Foreground(muted),
		PrimaryText: lipgloss.NewStyle().Foreground(primary),
		SuccessText: lipgloss.NewStyle().Foreground(success),
		ErrorText:   lipgloss.NewStyle().Foreground(errorColor),
		WarningText: lipgloss.NewStyle().Foreground(warning),
		KeyText:     lipgloss.NewStyle().Foreground(primary).Bold(true),

		Container: lipgloss.NewStyle().
			Padding(1, 2),
	}
}

// StatusIcon returns the styled icon for an operation state.
func (s *Styles) StatusIcon(state domain.OperationState) string {
	switch state {
	case domain.StateSucceeded:
		return s.SuccessText.Render("✓")
	case domain.StateFailed:
		return s.ErrorText.Render("✗")
	case domain.StateRunning:
		return s.PrimaryText.Render("⚬")
	case domain.StateIdle:
		return s.MutedText.Render("○")
	default:
		return "•"
	}
}

// Keybinding returns styled keybinding text.
func (s *Styles) Keybinding(key, desc string) string {
	return s.KeyText.Render("["+key+"]") + " " + s.MutedText.Render(desc)
}
