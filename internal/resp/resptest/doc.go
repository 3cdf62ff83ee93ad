// Package resptest runs an in-process RESP server for tests.
//
// A Server accepts connections on a loopback or unix socket and answers
// each command with a Handler. Keyspace is a Handler holding typed keys
// (strings, hashes, lists, sets, sorted sets) that understands the
// commands the shell sends.
//
//	ks := resptest.NewKeyspace()
//	ks.Set("greeting", "hello")
//	srv := resptest.NewServer(t, ks)
//	... dial srv.Addr() ...
package resptest
