// Package iofs owns the filesystem footprint: config, log and
// artifact directories, the generated default config file, and JSON
// artifact output for parity and drop reports.
package iofs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/chairside/r4sync/pkg/config"
	"github.com/gnames/gnfmt"
)

//go:embed config.yaml
var ConfigYAML string

// EnsureDirs creates the config, log and artifact directories when
// missing.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.LogDir(homeDir),
		config.ArtifactDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes the embedded default config.yaml to the
// config directory unless one already exists.
func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.WriteFile(configPath, []byte(ConfigYAML), 0644); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}

// WriteArtifact encodes v as pretty JSON at path. An empty path
// resolves to name inside the default artifact directory; the chosen
// path is returned.
func WriteArtifact(homeDir, path, name string, v any) (string, error) {
	if path == "" {
		path = filepath.Join(config.ArtifactDir(homeDir), name)
	}

	enc := gnfmt.GNjson{Pretty: true}
	data, err := enc.Encode(v)
	if err != nil {
		return "", WriteArtifactError(path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", WriteArtifactError(path, err)
	}
	return path, nil
}
