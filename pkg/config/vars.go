package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "r4sync"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/r4sync by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/r4sync/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ArtifactDir returns the default directory for parity and drop-report
// JSON artifacts. Returns ~/.local/share/r4sync/artifacts by default.
func ArtifactDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "artifacts")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/r4sync/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
