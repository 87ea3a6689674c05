package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/poretally/config.yml
// - macOS: ~/Library/Application Support/poretally/config.yml
// - Windows: %APPDATA%\poretally\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "poretally", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file.
// This is always .poretally/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".poretally", "config.yml")
}
