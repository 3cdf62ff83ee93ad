// Package connection provides the store connection for kvsh.
//
// This package manages the link to a RESP key-value server:
//
//   - endpoint.go: server address parsing (host:port, redis://, rediss://, unix://)
//   - socket.go: dialing over TCP, TLS or a unix socket
//   - client.go: one connection, request/reply with deadlines, AUTH and SELECT
//   - store.go: type probing and typed fetches on top of a client
//   - manager.go: the current connection and its lifecycle
//
// A broken connection is dropped and dialed again on the next command.
package connection
