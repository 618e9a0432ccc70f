package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dotConfig = ".config"
	appName   = "fitmetrics"
	dbName    = "fitmetrics.db"

	envHome      = "FITMETRICS_HOME"
	envXDGConfig = "XDG_CONFIG_HOME"
)

// Dir is where fitctl keeps its database. FITMETRICS_HOME wins, then
// $XDG_CONFIG_HOME/fitmetrics, then ~/.config/fitmetrics.
func Dir() (string, error) {
	if dir := os.Getenv(envHome); dir != "" {
		return dir, nil
	}
	if base := os.Getenv(envXDGConfig); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dotConfig, appName), nil
}

func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", appName, err)
	}
	return dir, nil
}

func DB() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbName), nil
}
