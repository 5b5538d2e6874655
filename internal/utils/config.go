package utils

import (
	"os"
	"path/filepath"
)

// GetProjectRoot walks up from the working directory to the first directory
// holding go.mod or idqr.toml. It falls back to ".".
func GetProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "." // fallback
	}
	for {
		for _, marker := range []string{"go.mod", "idqr.toml"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached root
		}
		dir = parent
	}
	return "." // fallback
}
