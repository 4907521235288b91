package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName = "tiptap-cli"
)

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appName), nil
}

func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// BackupDir is where overwritten project files are copied with --backup.
func BackupDir() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "backups"), nil
}

// LockDir holds advisory lock files for config files we edit.
func LockDir() (string, error) {
	d, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "locks"), nil
}

func ExpandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	if len(path) > 1 && path[1] == '/' {
		return filepath.Join(home, path[2:]), nil
	}
	return "", fmt.Errorf("unsupported home expansion format: %s", path)
}

// GlobalNpmrc is the per-user npm config file.
func GlobalNpmrc() (string, error) {
	return ExpandHome("~/.npmrc")
}
