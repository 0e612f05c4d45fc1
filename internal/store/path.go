package store

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the directory holding the review database.
// Defaults to ~/.revise, falls back to ./.revise if home dir unavailable.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".revise")
	}
	return filepath.Join(home, ".revise")
}

// DefaultDBPath returns the full path to the review database file.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "reviews.db")
}
