// Package env locates the per-user directories of the recipe tool.
package env

import (
	"os"
	"path/filepath"
)

// WorkDir returns the default workspace: <UserCacheDir>/.recipe.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".recipe"), nil
}

// RegistryDir returns the default registry root inside the workspace.
func RegistryDir() (string, error) {
	dir, err := WorkDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "registry"), nil
}

// ConfigDir returns the directory searched for recipe.yaml:
// <UserConfigDir>/recipe.
func ConfigDir() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "recipe"), nil
}
