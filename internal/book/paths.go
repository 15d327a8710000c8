package book

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "schnecken-bot"

// defaultDataDir returns the platform-specific data directory for the bot.
func defaultDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DefaultBookDir returns the on-disk directory for the named book variant
// ("normal" or "provocative"), creating it if necessary.
func DefaultBookDir(variant string) (string, error) {
	dataDir, err := defaultDataDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(dataDir, "book", variant)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
