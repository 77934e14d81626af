// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package ubuntu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/janderssonse/debwiz/internal/domain"
	"github.com/janderssonse/debwiz/internal/logging"
	"github.com/sirupsen/logrus"
)

const installedStatus = "install ok installed"

var iconPattern = regexp.MustCompile(`(?i)128x128.*\.png$`)

// DebReader implements the MetadataReader port with dpkg-deb and dpkg-query.
type DebReader struct {
	runner domain.CommandRunner
	logger *logrus.Entry
}

// NewDebReader creates a reader that runs dpkg tools through runner.
func NewDebReader(runner domain.CommandRunner) *DebReader {
	return &DebReader{
		runner: runner,
		logger: logging.NewLogger("metadata"),
	}
}

// Read inspects the package file at path. Only a missing package name is an
// error; every other field is best effort.
func (r *DebReader) Read(ctx context.Context, path string) (*domain.PackageInfo, error) {
	if !strings.EqualFold(filepath.Ext(path), ".deb") {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotDebFile, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMetadataUnreadable, err)
	}

	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMetadataUnreadable, err)
	}

	info := &domain.PackageInfo{
		Path: abs,
		Name: r.field(ctx, abs, "Package"),
	}

	if info.Name == "" {
		return nil, fmt.Errorf("%w: no package name in %s", domain.ErrMetadataUnreadable, abs)
	}

	info.Version = r.field(ctx, abs, "Version")
	info.Description = r.field(ctx, abs, "Description")
	info.Installed = r.isInstalled(ctx, info.Name)
	info.License = r.license(ctx, abs, info.Name)
	info.Icon = r.iconMember(ctx, abs)

	r.logger.WithFields(logrus.Fields{
		"package":     info.Name,
		"version":     info.Version,
		"installed":   info.Installed,
		"has_license": info.HasLicense(),
		"has_icon":    info.Icon != "",
	}).Debug("Read package metadata")

	return info, nil
}

func (r *DebReader) field(ctx context.Context, path, name string) string {
	output, err := r.runner.ExecuteWithOutput(ctx, "dpkg-deb", "-f", path, name)
	if err != nil {
		r.logger.WithError(err).WithField("field", name).Debug("Control field unavailable")

		return ""
	}

	return strings.TrimSpace(output)
}

func (r *DebReader) isInstalled(ctx context.Context, name string) bool {
	output, err := r.runner.ExecuteWithOutput(ctx, "dpkg-query", "-W", "-f=${Status}", name)
	if err != nil {
		return false
	}

	return strings.Contains(output, installedStatus)
}

func (r *DebReader) license(ctx context.Context, path, name string) string {
	member := "./usr/share/doc/" + name + "/copyright"

	output, err := r.runner.ExecuteShell(ctx, extractMemberScript(path, member))
	if err != nil {
		return ""
	}

	return output
}

// iconMember lists the archive and returns the path of its icon, without
// extracting it.
func (r *DebReader) iconMember(ctx context.Context, path string) string {
	listing, err := r.runner.ExecuteWithOutput(ctx, "dpkg-deb", "--contents", path)
	if err != nil {
		return ""
	}

	return findIconMember(listing)
}

// findIconMember returns the archive path of the first 128x128 PNG in a
// dpkg-deb --contents listing.
func findIconMember(listing string) string {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}

		member := fields[5]
		if !iconPattern.MatchString(member) {
			continue
		}

		if !strings.HasPrefix(member, "./") {
			member = "./" + strings.TrimPrefix(member, "/")
		}

		return member
	}

	return ""
}

func extractMemberScript(path, member string) string {
	return fmt.Sprintf("dpkg-deb --fsys-tarfile %s | tar -xOf - %s 2>/dev/null", shellQuote(path), shellQuote(member))
}
