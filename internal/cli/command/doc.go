// Package command provides the kvsh command-line surface.
//
// It uses urfave/cli/v2:
//
//   - root.go: application, global flags, config and logger bootstrap
//   - shell.go: the interactive shell (default action)
//   - exec.go: single-command mode
//   - connect.go: connect, ping and remember an endpoint
//   - config.go: show and validate the effective configuration
//   - history.go: print persisted history
//   - version.go: build information
package command
