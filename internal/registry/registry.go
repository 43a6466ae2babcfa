// Package registry resolves requirements against packages installed in
// local directories.
//
// A registry root holds one directory per package version:
//
//	<root>/
//	  <name>/
//	    <version>/
//	      include/
//	      lib/
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/pkgs/mod/versions"
	"github.com/goplus/recipe/recipe"
)

// ErrNotFound is returned when no root has the package at all.
var ErrNotFound = errors.New("package not found")

// Local is a recipe.Resolver over local registry roots. When several roots
// hold the same version of a package, the first root wins.
type Local struct {
	roots  []string
	logger *log.Logger
}

var _ recipe.Resolver = (*Local)(nil)

// NewLocal returns a resolver searching roots in order.
func NewLocal(logger *log.Logger, roots ...string) *Local {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Local{roots: slices.Clone(roots), logger: logger}
}

// Roots returns the registry roots.
func (l *Local) Roots() []string {
	return slices.Clone(l.roots)
}

// Versions returns the versions of name found in the roots, mapped to their
// install paths.
func (l *Local) Versions(name string) (map[string]string, error) {
	escaped, err := module.EscapePath(name)
	if err != nil {
		return nil, err
	}
	found := make(map[string]string)
	for _, root := range l.roots {
		dir := filepath.Join(root, escaped)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if _, ok := found[e.Name()]; !ok {
				found[e.Name()] = filepath.Join(dir, e.Name())
			}
		}
	}
	return found, nil
}

// Resolve returns the highest version of name matching constraint. An
// exact constraint picks the directory named after its version when one
// of the roots has it, without listing the other versions.
func (l *Local) Resolve(ctx context.Context, name, constraint string) (*recipe.ResolvedPackage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := versions.ParseConstraint(constraint)
	if err != nil {
		return nil, err
	}
	if version, ok := c.Pinned(); ok {
		pkg, err := l.pinned(name, version)
		if err != nil || pkg != nil {
			return pkg, err
		}
	}
	found, err := l.Versions(name)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s in %v", ErrNotFound, name, l.roots)
	}

	candidates := make([]string, 0, len(found))
	for v := range found {
		candidates = append(candidates, v)
	}
	slices.Sort(candidates)
	version, err := c.Select(candidates)
	if err != nil {
		return nil, err
	}

	pkg, err := describe(name, version, found[version])
	if err != nil {
		return nil, err
	}
	l.logger.Debug("resolved", "requirement", name+"/"+constraint, "version", version, "path", pkg.InstallPath)
	return pkg, nil
}

// pinned returns name at exactly version from the first root holding that
// directory, nil if none does.
func (l *Local) pinned(name, version string) (*recipe.ResolvedPackage, error) {
	escaped, err := module.EscapePath(name)
	if err != nil {
		return nil, err
	}
	for _, root := range l.roots {
		dir := filepath.Join(root, escaped, version)
		if !isDir(dir) {
			continue
		}
		pkg, err := describe(name, version, dir)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("resolved pinned version", "requirement", name+"/"+version, "path", dir)
		return pkg, nil
	}
	return nil, nil
}

func describe(name, version, dir string) (*recipe.ResolvedPackage, error) {
	pkg := &recipe.ResolvedPackage{
		Name:        name,
		Version:     version,
		InstallPath: dir,
	}
	if include := filepath.Join(dir, "include"); isDir(include) {
		pkg.Headers = include
	}
	entries, err := os.ReadDir(filepath.Join(dir, "lib"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			pkg.Libraries = append(pkg.Libraries, filepath.Join(dir, "lib", e.Name()))
		}
	}
	return pkg, nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
