// Package module defines the module.Version type along with support code.
package module

import (
	"fmt"
	"path/filepath"
)

// A Version identifies a concrete version of a package.
type Version struct {
	Name    string // package name, e.g. "lz4" or "owner/repo"
	Version string // version string, e.g. "1.9.4"
}

func (v Version) String() string {
	return v.Name + "@" + v.Version
}

// EscapePath returns the escaped form of the given package name as a valid
// file system path. It fails if the name is empty, absolute or escapes
// its parent directory.
func EscapePath(name string) (escaped string, err error) {
	escaped, err = filepath.Localize(name)
	if err != nil {
		return "", fmt.Errorf("invalid package name %q: %w", name, err)
	}
	return escaped, nil
}
