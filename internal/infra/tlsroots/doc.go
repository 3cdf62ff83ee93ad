// Package tlsroots builds client TLS configuration for encrypted
// store connections.
//
// Trust starts from the system pool; extra CA certificates come from a
// PEM file or a directory of them. An optional client key pair is
// re-read on every handshake, so rotated certificates take effect on
// the next reconnect without restarting the shell.
package tlsroots
