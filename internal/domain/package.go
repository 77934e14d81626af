// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"strings"
)

// PackageInfo describes a local package file and its installation status.
type PackageInfo struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Installed   bool   `json:"installed"`
	License     string `json:"-"`
	// Icon is the archive path of the 128x128 PNG icon, if the package ships one.
	Icon string `json:"icon,omitempty"`
}

// HasLicense reports whether a license page should be shown before installing.
func (p *PackageInfo) HasLicense() bool {
	return strings.TrimSpace(p.License) != ""
}

// Summary returns the first line of the package description.
func (p *PackageInfo) Summary() string {
	summary, _, _ := strings.Cut(p.Description, "\n")

	return strings.TrimSpace(summary)
}

// DisplayName returns the package name, falling back to the file name.
func (p *PackageInfo) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}

	name := p.Path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	return strings.TrimSuffix(name, ".deb")
}

// InstallRequest builds the request that installs this package file.
func (p *PackageInfo) InstallRequest() OperationRequest {
	return OperationRequest{Kind: OperationInstall, Target: p.Path}
}

// UninstallRequest builds the request that removes this package by name.
func (p *PackageInfo) UninstallRequest() OperationRequest {
	return OperationRequest{Kind: OperationUninstall, Target: p.Name}
}
