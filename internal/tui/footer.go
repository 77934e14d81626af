// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/janderssonse/debwiz/internal/tui/styles"
)

// renderFooter lists the key bindings that apply to the current page.
func renderFooter(styleConfig *styles.Styles, width int, bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))

	for _, binding := range bindings {
		if !binding.Enabled() {
			continue
		}

		help := binding.Help()
		parts = append(parts, styleConfig.Keybinding(help.Key, help.Desc))
	}

	style := lipgloss.NewStyle().
		Padding(0, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(lipgloss.Color("240"))

	if width > 0 {
		style = style.Width(width)
	}

	return style.Render(strings.Join(parts, "   "))
}
