package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDir returns the directory the run database lives in:
// $WOMSIM_HOME when set, otherwise ~/.womsim.
func DefaultDir() (string, error) {
	if dir := os.Getenv("WOMSIM_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".womsim"), nil
}
