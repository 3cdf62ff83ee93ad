// Package domain defines the core value types of kvsh.
//
// Domain types are plain values without IO dependencies:
//
//   - Value: type-probed key contents (scalar, hash, list, set, sorted set)
//   - KeyType: the type labels reported by the store
//   - Errors: coded errors shared by the dispatcher and the store client
package domain
