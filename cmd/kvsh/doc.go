// Package main provides the entry point for kvsh.
//
// kvsh is an interactive shell for a Redis-compatible key-value store:
//
//	kvsh                         # prompt for a server, then start the shell
//	kvsh -s redis://cache:6379/1 # connect to a specific endpoint
//	kvsh exec SCAN 20            # run one command and exit
//	kvsh -o json exec GET user:1 # structured output
//
// Inside the shell, GET inspects the key type and prints strings,
// hashes, lists, sets and sorted sets in a readable form; SCAN [count]
// lists keys; any other command is sent as typed.
package main
