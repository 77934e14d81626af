// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package domain_test

import (
	"fmt"
	"testing"

	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		kind         domain.OperationKind
		line         string
		lastFraction float64
		want         domain.ProgressEvent
	}{
		{
			name:         "install unpacking with percentage",
			kind:         domain.OperationInstall,
			line:         "Unpacking foo ... 37%",
			lastFraction: 0.20,
			want:         domain.ProgressEvent{Fraction: 0.37, HasFraction: true, Status: "Unpacking packages..."},
		},
		{
			name:         "uninstall suppressed when fraction unchanged",
			kind:         domain.OperationUninstall,
			line:         "Removing bar ... 80%",
			lastFraction: 0.80,
			want:         domain.ProgressEvent{},
		},
		{
			name:         "unrelated line yields nothing",
			kind:         domain.OperationInstall,
			line:         "some unrelated log line",
			lastFraction: 0.5,
			want:         domain.ProgressEvent{},
		},
		{
			name:         "reading without percentage is preparing for install",
			kind:         domain.OperationInstall,
			line:         "Reading database ...",
			lastFraction: 0.0,
			want:         domain.ProgressEvent{Status: "Preparing installation..."},
		},
		{
			name:         "preparing without percentage is preparing for uninstall",
			kind:         domain.OperationUninstall,
			line:         "Preparing to unpack ...",
			lastFraction: 0.3,
			want:         domain.ProgressEvent{Status: "Preparing removal..."},
		},
		{
			name:         "bracketed percentage",
			kind:         domain.OperationInstall,
			line:         "Progress: [ 45%]",
			lastFraction: 0.10,
			want:         domain.ProgressEvent{Fraction: 0.45, HasFraction: true, Status: "Installing..."},
		},
		{
			name:         "completion always published",
			kind:         domain.OperationInstall,
			line:         "Setting up foo (1.0) ... 100%",
			lastFraction: 0.995,
			want:         domain.ProgressEvent{Fraction: 1.0, HasFraction: true, Status: "Setting up packages..."},
		},
		{
			name:         "completion published even when repeated",
			kind:         domain.OperationUninstall,
			line:         "[100%]",
			lastFraction: 1.0,
			want:         domain.ProgressEvent{Fraction: 1.0, HasFraction: true, Status: "Uninstalling..."},
		},
		{
			name:         "reading keyword wins over later keywords",
			kind:         domain.OperationInstall,
			line:         "Reading Unpacking 50%",
			lastFraction: 0.0,
			want:         domain.ProgressEvent{Fraction: 0.5, HasFraction: true, Status: "Reading package lists..."},
		},
		{
			name:         "reading database percentage on install",
			kind:         domain.OperationInstall,
			line:         "(Reading database ... 65%",
			lastFraction: -1,
			want:         domain.ProgressEvent{Fraction: 0.65, HasFraction: true, Status: "Reading package lists..."},
		},
		{
			name:         "first zero percent line published from initial state",
			kind:         domain.OperationInstall,
			line:         "Processing triggers 0%",
			lastFraction: -1,
			want:         domain.ProgressEvent{Fraction: 0, HasFraction: true, Status: "Processing triggers..."},
		},
		{
			name:         "removing keyword only applies to uninstall",
			kind:         domain.OperationInstall,
			line:         "Removing old files 20%",
			lastFraction: 0.1,
			want:         domain.ProgressEvent{Fraction: 0.2, HasFraction: true, Status: "Installing..."},
		},
		{
			name:         "setting up keyword only applies to install",
			kind:         domain.OperationUninstall,
			line:         "Setting up 30%",
			lastFraction: 0.1,
			want:         domain.ProgressEvent{Fraction: 0.3, HasFraction: true, Status: "Uninstalling..."},
		},
		{
			name:         "processing on uninstall",
			kind:         domain.OperationUninstall,
			line:         "Processing triggers for man-db 90%",
			lastFraction: 0.5,
			want:         domain.ProgressEvent{Fraction: 0.9, HasFraction: true, Status: "Processing triggers..."},
		},
		{
			name:         "suppressed percentage does not fall back to preparing",
			kind:         domain.OperationInstall,
			line:         "Reading package lists... 50%",
			lastFraction: 0.5,
			want:         domain.ProgressEvent{},
		},
		{
			name:         "percent sign without digits is not progress",
			kind:         domain.OperationInstall,
			line:         "100 percent % done",
			lastFraction: 0,
			want:         domain.ProgressEvent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := domain.ParseLine(tt.kind, tt.line, tt.lastFraction)

			assert.Equal(t, tt.want.HasFraction, got.HasFraction)
			assert.InDelta(t, tt.want.Fraction, got.Fraction, 1e-9)
			assert.Equal(t, tt.want.Status, got.Status)
		})
	}
}

func TestParseLine_Monotonic(t *testing.T) {
	t.Parallel()

	kinds := []domain.OperationKind{domain.OperationInstall, domain.OperationUninstall}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			last := -1.0

			var emitted []float64

			for percent := 0; percent <= 100; percent++ {
				// Repeat each value to exercise suppression of duplicates.
				for range 3 {
					line := fmt.Sprintf("Progress: [%3d%%]", percent)

					event := domain.ParseLine(kind, line, last)
					if !event.HasFraction {
						continue
					}

					if event.Fraction != 1.0 {
						assert.GreaterOrEqual(t, event.Fraction-last, 0.01-1e-9)
					}

					emitted = append(emitted, event.Fraction)
					last = event.Fraction
				}
			}

			require.NotEmpty(t, emitted)

			for i := 1; i < len(emitted); i++ {
				assert.GreaterOrEqual(t, emitted[i], emitted[i-1])
			}

			assert.InDelta(t, 1.0, emitted[len(emitted)-1], 1e-9)
		})
	}
}

func TestParseLine_IsPure(t *testing.T) {
	t.Parallel()

	line := "Unpacking foo ... 37%"

	first := domain.ParseLine(domain.OperationInstall, line, 0.2)
	second := domain.ParseLine(domain.OperationInstall, line, 0.2)

	assert.Equal(t, first, second)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	// Status is computable for suppressed lines, for logging.
	assert.Equal(t, "Removing packages...", domain.StatusFor(domain.OperationUninstall, "Removing bar ... 80%"))
	assert.Equal(t, "Installing...", domain.StatusFor(domain.OperationInstall, "Get:1 file:/tmp/foo.deb"))
	assert.Equal(t, "Uninstalling...", domain.StatusFor(domain.OperationUninstall, ""))
}

func TestProgressEvent_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.ProgressEvent{}.IsEmpty())
	assert.False(t, domain.ProgressEvent{Status: "x"}.IsEmpty())
	assert.False(t, domain.ProgressEvent{HasFraction: true}.IsEmpty())
}
