// Package resp implements the client side of the Redis serialization
// protocol (RESP2) used by kvsh to talk to the store.
//
//   - reply.go: the closed Reply sum type (Nil, Integer, String, Error, Array)
//   - codec.go: command encoding and reply decoding with size limits
//
// The package knows nothing about commands; it only moves frames.
package resp
