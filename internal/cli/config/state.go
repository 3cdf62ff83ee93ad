package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const lastHostFile = "last_host"

// LoadLastHost returns the server address saved by the previous session,
// or "" if there is none.
func LoadLastHost(stateDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(ExpandHome(stateDir), lastHostFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveLastHost remembers host for the next session.
func SaveLastHost(stateDir, host string) error {
	dir := ExpandHome(stateDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, lastHostFile), []byte(host+"\n"), 0600)
}
