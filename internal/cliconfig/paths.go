package cliconfig

import (
	"os"
	"path/filepath"
)

func DefaultConfigDir() string {
	if v := os.Getenv("JKEXEC_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".jkexec")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config")
}
