package config

import (
	"os"
	"path/filepath"
)

const AppName = "powledger"

func AppDir() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, AppName)
}

// ConfigPath is where Load looks when no path is given on the command line.
func ConfigPath() string {
	return filepath.Join(AppDir(), "config.yaml")
}
