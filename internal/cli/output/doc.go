// Package output renders store replies for the kvsh shell.
//
// This package handles all shell output formatting:
//
//   - formatter.go: Formatter interface, factory and the ScanPage result
//   - text.go: human-readable rendering of replies and typed values
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//   - plain.go: conversion of replies and typed values to plain Go values
//   - table.go: column-aligned tables for listings
package output
