// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

// Package config loads the debwiz configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/janderssonse/debwiz/internal/logging"
	"github.com/pelletier/go-toml/v2"
)

// DefaultElevationHelper is the command that asks for authorization before running apt-get.
const DefaultElevationHelper = "pkexec"

// ErrInvalidConfig is returned when the configuration file holds unusable values.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the content of config.toml.
type Config struct {
	ElevationHelper string         `toml:"elevation_helper" jsonschema:"description=Command that authorizes apt-get (pkexec or sudo),default=pkexec"`
	Log             logging.Config `toml:"log"              jsonschema:"description=Log file and level"`
	UI              UIConfig       `toml:"ui"               jsonschema:"description=Wizard presentation"`
}

// UIConfig holds wizard presentation options.
type UIConfig struct {
	AltScreen         bool `toml:"alt_screen"          jsonschema:"description=Run the wizard in the alternate screen,default=true"`
	AutoAcceptLicense bool `toml:"auto_accept_license" jsonschema:"description=Accept package licenses without asking"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ElevationHelper: DefaultElevationHelper,
		Log: logging.Config{
			Level:  "info",
			Format: "text",
			File:   DefaultLogPath(),
		},
		UI: UIConfig{
			AltScreen: true,
		},
	}
}

// Load reads the configuration at path on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.Log.File = ExpandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values that would produce a broken command line.
func (c *Config) Validate() error {
	helper := strings.TrimSpace(c.ElevationHelper)
	if helper == "" {
		return fmt.Errorf("%w: elevation_helper must not be empty", ErrInvalidConfig)
	}

	if strings.ContainsAny(helper, " \t;&|") {
		return fmt.Errorf("%w: elevation_helper must be a single command", ErrInvalidConfig)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json", ErrInvalidConfig)
	}

	return nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
