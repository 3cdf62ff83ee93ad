// Package config defines the CLI configuration structure.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// CLIConfig is the configuration for kvsh.
type CLIConfig struct {
	// Connection settings
	Server   string `koanf:"server" yaml:"server"`
	Username string `koanf:"username" yaml:"username,omitempty"`
	Password string `koanf:"password" yaml:"password,omitempty"`
	DB       int    `koanf:"db" yaml:"db"`
	TLS      bool   `koanf:"tls" yaml:"tls"`

	// Output is the result format: text, json or yaml.
	Output string `koanf:"output" yaml:"output"`

	Certs    CertsConfig    `koanf:"certs" yaml:"certs"`
	History  HistoryConfig  `koanf:"history" yaml:"history"`
	State    StateConfig    `koanf:"state" yaml:"state"`
	Timeouts TimeoutsConfig `koanf:"timeouts" yaml:"timeouts"`
	Log      LogConfig      `koanf:"log" yaml:"log"`
	Metrics  MetricsConfig  `koanf:"metrics" yaml:"metrics"`
}

// CertsConfig holds TLS material for rediss:// endpoints.
type CertsConfig struct {
	// CA is a PEM file or a directory of PEM files trusted in addition
	// to the system roots.
	CA       string `koanf:"ca" yaml:"ca,omitempty"`
	Cert     string `koanf:"cert" yaml:"cert,omitempty"`
	Key      string `koanf:"key" yaml:"key,omitempty"`
	Insecure bool   `koanf:"insecure" yaml:"insecure,omitempty"`
}

// HistoryConfig locates and bounds the command history.
type HistoryConfig struct {
	File string `koanf:"file" yaml:"file"`
	Size int    `koanf:"size" yaml:"size"`
}

// StateConfig holds the directory for state kept between sessions.
type StateConfig struct {
	Dir string `koanf:"dir" yaml:"dir"`
}

// TimeoutsConfig bounds connection setup and each command.
type TimeoutsConfig struct {
	Connect time.Duration `koanf:"connect" yaml:"connect"`
	Command time.Duration `koanf:"command" yaml:"command"`
}

// MarshalYAML writes durations as "15s" rather than nanoseconds.
func (t TimeoutsConfig) MarshalYAML() (any, error) {
	return map[string]string{
		"connect": t.Connect.String(),
		"command": t.Command.String(),
	}, nil
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
	File   string `koanf:"file" yaml:"file"`
}

// MetricsConfig configures the Prometheus endpoint. Empty disables it.
type MetricsConfig struct {
	Address string `koanf:"address" yaml:"address"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Output: "text",
		History: HistoryConfig{
			Size: 1000,
		},
		State: StateConfig{
			Dir: DefaultStateDir(),
		},
		Timeouts: TimeoutsConfig{
			Connect: 15 * time.Second,
			Command: 15 * time.Second,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultStateDir returns ~/.kvsh.
func DefaultStateDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".kvsh")
}

// HistoryFile returns the history path, defaulting to state_dir/history.
func (c *CLIConfig) HistoryFile() string {
	if c.History.File != "" {
		return ExpandHome(c.History.File)
	}
	return filepath.Join(ExpandHome(c.State.Dir), "history")
}

// Redacted returns a copy safe to print.
func (c *CLIConfig) Redacted() *CLIConfig {
	out := *c
	if out.Password != "" {
		out.Password = "***"
	}
	return &out
}
