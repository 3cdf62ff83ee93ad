// Package config defines the CLI configuration structure.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/kvsh/internal/cli/output"
	"github.com/yndnr/kvsh/internal/infra/confloader"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultStateDir(), "cli.yaml")
}

// LoadOptions selects the sources for Load.
type LoadOptions struct {
	// Path is the config file. Empty means DefaultConfigPath, which may
	// be absent; an explicit path must exist.
	Path string
	// Flags holds values set on the command line, keyed by dotted path.
	Flags map[string]any
}

// Load builds the configuration from defaults, the config file, KVSH_*
// environment variables and flags, in increasing priority.
func Load(opts LoadOptions) (*CLIConfig, error) {
	path := ExpandHome(opts.Path)
	if path == "" {
		path = DefaultConfigPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	cfg := Default()
	if err := confloader.Load(cfg, confloader.Sources{File: path, Flags: opts.Flags}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught by decoding.
func (c *CLIConfig) Validate() error {
	if _, err := output.ParseFormat(c.Output); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DB < 0 {
		return fmt.Errorf("invalid config: db must not be negative, got %d", c.DB)
	}
	if c.Timeouts.Connect < 0 || c.Timeouts.Command < 0 {
		return errors.New("invalid config: timeouts must not be negative")
	}
	if (c.Certs.Cert == "") != (c.Certs.Key == "") {
		return errors.New("invalid config: certs.cert and certs.key must be set together")
	}
	if c.History.Size < 0 {
		return fmt.Errorf("invalid config: history.size must not be negative, got %d", c.History.Size)
	}
	return nil
}

// Save writes cfg as YAML with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	path = ExpandHome(path)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
