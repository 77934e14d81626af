// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GoodbyeMessage is printed when the wizard closes.
const GoodbyeMessage = "Goodbye!\n"

// View implements tea.Model.
func (w *Wizard) View() string {
	if w.quitting {
		return GoodbyeMessage
	}

	var content string

	switch w.page {
	case PageWelcome:
		content = w.viewWelcome()
	case PageLicense:
		content = w.viewLicense()
	case PageProgress:
		content = w.viewProgress()
	case PageDone:
		content = w.viewDone()
	}

	sections := []string{w.viewHeader(), content}

	if w.notice != "" {
		sections = append(sections, w.styles.WarningText.Render(w.notice))
	}

	if row := w.viewButtons(); row != "" {
		sections = append(sections, row)
	}

	sections = append(sections, renderFooter(w.styles, w.width, w.footerBindings()))

	return w.styles.Container.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (w *Wizard) viewHeader() string {
	title := w.page.String()
	if w.page == PageProgress || w.page == PageDone {
		title = kindLabel(w.snap.Kind)
	}

	return w.styles.Header.Render(fmt.Sprintf("debwiz · %s · %s", w.info.DisplayName(), title))
}

// kindLabel returns the title-cased operation kind, e.g. "Uninstall".
func kindLabel(kind domain.OperationKind) string {
	return cases.Title(language.English).String(kind.String())
}

func (w *Wizard) viewWelcome() string {
	var b strings.Builder

	b.WriteString(w.styles.Title.Render(w.info.DisplayName()))
	b.WriteString("\n")
	b.WriteString(w.summary)

	if w.info.Icon != "" {
		b.WriteString("\n")
		b.WriteString(w.styles.MutedText.Render("Icon: " + w.info.Icon))
	}

	if w.info.Installed {
		b.WriteString("\n")
		b.WriteString(w.styles.SuccessText.Render("✓ This package is already installed."))
	}

	return b.String()
}

func (w *Wizard) viewLicense() string {
	checkbox := "[ ]"
	if w.accepted {
		checkbox = "[x]"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		w.styles.Title.Render("License Agreement"),
		w.styles.Card.Render(w.viewport.View()),
		w.styles.PrimaryText.Render(checkbox)+" I accept the terms in the License Agreement",
	)
}

func (w *Wizard) viewProgress() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		w.spinner.View()+" "+w.truncate(w.snap.Status),
		"",
		w.bar.ViewAs(w.snap.Fraction),
		"",
		w.styles.MutedText.Render("You may be asked to authorize the operation."),
	)
}

func (w *Wizard) viewDone() string {
	status := w.styles.StatusIcon(w.snap.State) + " " + w.truncate(w.snap.Status)

	if w.snap.State != domain.StateFailed {
		return lipgloss.JoinVertical(lipgloss.Left,
			w.styles.SuccessText.Bold(true).Render(status),
			"",
			w.bar.ViewAs(w.snap.DisplayFraction()),
		)
	}

	diagnosis := domain.DiagnoseOutput(w.snap.Output, w.snap.ExitCode)

	return lipgloss.JoinVertical(lipgloss.Left,
		w.styles.ErrorText.Bold(true).Render(status),
		w.styles.ErrorText.Render(domain.FormatDiagnosis(diagnosis, true)),
		w.styles.LogBox.Render(w.viewport.View()),
	)
}

// truncate shortens a status line to the terminal width.
func (w *Wizard) truncate(text string) string {
	limit := w.width - borderPadding - 2
	if limit <= 0 || runewidth.StringWidth(text) <= limit {
		return text
	}

	return runewidth.Truncate(text, limit, "...")
}

func (w *Wizard) viewButtons() string {
	buttons := w.buttons()
	if len(buttons) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(buttons))

	for i, b := range buttons {
		style := w.styles.Button

		switch {
		case b.disabled:
			style = w.styles.ButtonDisabled
		case i == w.focus:
			style = w.styles.ButtonFocused
		}

		rendered = append(rendered, style.Render(b.label))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (w *Wizard) footerBindings() []key.Binding {
	switch w.page {
	case PageWelcome:
		return []key.Binding{w.keys.Next, w.keys.Activate, w.keys.Quit}
	case PageLicense:
		return []key.Binding{w.keys.Toggle, w.keys.Down, w.keys.Next, w.keys.Activate, w.keys.Back, w.keys.Quit}
	case PageDone:
		if w.snap.State == domain.StateFailed {
			return []key.Binding{w.keys.Down, w.keys.Next, w.keys.Activate, w.keys.Quit}
		}

		return []key.Binding{w.keys.Activate, w.keys.Quit}
	default:
		return nil
	}
}
