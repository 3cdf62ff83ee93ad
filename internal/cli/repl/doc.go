// Package repl provides the interactive shell loop for kvsh.
//
// This package implements the Read-Eval-Print Loop for interactive sessions:
//
//   - repl.go: main loop, prompt and session end
//   - dispatcher.go: command parsing, the SCAN and GET verbs, generic forwarding
//   - history.go: command history, recall cursor and persistence
//
// A session is single-threaded: each command is awaited before the next
// prompt is drawn.
package repl
