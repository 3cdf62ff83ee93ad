// Package confloader merges layered configuration into a typed struct
// and watches a configuration file for edits.
//
// Layers, highest priority first:
//
//  1. Command-line flags, keyed by dotted path
//  2. Environment variables (KVSH_ prefix, "_" separates levels)
//  3. A YAML file
//  4. Whatever the target struct already holds
package confloader
