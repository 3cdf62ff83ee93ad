// Package logger provides structured logging for kvsh.
//
// This package wraps go.uber.org/zap behind a small Logger interface:
//
//   - logger.go: Logger interface, configuration, global default logger
//   - zap.go: zap-backed implementation with sensitive-field redaction
//   - context.go: context propagation of the logger and the session ID
//   - redact.go: redaction of credentials in field values
//
// The interactive terminal belongs to the line editor, so the shell
// normally logs to a file or at warn level to stderr.
package logger
