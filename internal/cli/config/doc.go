// Package config provides the kvsh CLI configuration.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: CLIConfig struct (~/.kvsh/cli.yaml)
//   - loader.go: layered loading (defaults, file, KVSH_* environment, flags) and saving
//   - state.go: the last-used server address
package config
