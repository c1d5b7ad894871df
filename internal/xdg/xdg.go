// Package xdg provides XDG Base Directory support for jurybox.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "jurybox"

// ConfigHome returns the XDG config home directory.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// DataHome returns the XDG data home directory.
// Uses $XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

// RuntimeDir returns the directory for runtime state such as pidfiles.
// Uses $XDG_RUNTIME_DIR if set, otherwise falls back to the data dir.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return DataDir()
}

// ConfigDir returns the jurybox config directory: ConfigHome()/jurybox.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), appName)
}

// DataDir returns the jurybox data directory: DataHome()/jurybox.
func DataDir() string {
	return filepath.Join(DataHome(), appName)
}
