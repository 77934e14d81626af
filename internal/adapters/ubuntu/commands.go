// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package ubuntu implements the Debian/Ubuntu package management adapters.
package ubuntu

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/janderssonse/debwiz/internal/domain"
)

// DefaultElevationHelper runs the package manager with administrative rights.
const DefaultElevationHelper = "pkexec"

// AptCommandBuilder builds apt-get command lines run through an elevation helper.
type AptCommandBuilder struct {
	helper string
}

// NewAptCommandBuilder creates a builder for the given elevation helper.
// An empty helper selects pkexec.
func NewAptCommandBuilder(helper string) *AptCommandBuilder {
	if helper == "" {
		helper = DefaultElevationHelper
	}

	return &AptCommandBuilder{helper: helper}
}

// CommandLine returns the shell command line for req. Output of the command is
// merged into stdout so progress lines and errors arrive in one stream.
func (b *AptCommandBuilder) CommandLine(req domain.OperationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	switch req.Kind {
	case domain.OperationInstall:
		path, err := filepath.Abs(req.Target)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}

		return fmt.Sprintf("%s apt-get install -y --reinstall %s 2>&1", b.helper, shellQuote(path)), nil
	case domain.OperationUninstall:
		return fmt.Sprintf("%s apt-get remove -y %s 2>&1", b.helper, shellQuote(req.Target)), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %s", domain.ErrInvalidRequest, req.Kind)
	}
}

// shellQuote leaves plain words untouched and single-quotes everything else.
func shellQuote(word string) string {
	if word != "" && strings.IndexFunc(word, needsQuoting) < 0 {
		return word
	}

	return "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("/._-+:@%=,", r):
		return false
	default:
		return true
	}
}
