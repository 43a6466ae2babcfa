// Package workspace manages installed packages and their build cache.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/recipe/internal/lockedfile"
	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

// Workspace directory layout:
//
//	workspaceDir/
//	  <escaped>/                         # package-level dir (cacheDir)
//	    .cache.json                      # build cache: maps "version-packageID" -> Entry
//	    .cache.lock
//	  <escaped>@<version>-<packageID>/   # install root (installDir)
//	    include/
//	    lib/
//	    ...
const (
	cacheFile = ".cache.json"
	lockFile  = ".cache.lock"
)

// Entry describes one successful build.
type Entry struct {
	ID        string                  `json:"id"`
	Metadata  recipe.ConsumerMetadata `json:"metadata"`
	Options   map[string]string       `json:"options,omitempty"`
	BuildTime time.Time               `json:"build_time"`
}

// buildCache maps "version-packageID" keys to their entries.
type buildCache struct {
	Cache map[string]*Entry `json:"cache"`
}

func cacheKey(version, pkgID string) string {
	return version + "-" + pkgID
}

func (c *buildCache) get(version, pkgID string) (*Entry, bool) {
	entry, ok := c.Cache[cacheKey(version, pkgID)]
	return entry, ok
}

func (c *buildCache) set(version, pkgID string, entry *Entry) {
	if c.Cache == nil {
		c.Cache = make(map[string]*Entry)
	}
	c.Cache[cacheKey(version, pkgID)] = entry
}

// Workspace is a directory of installed packages.
type Workspace struct {
	dir string
}

// New returns the workspace rooted at dir.
func New(dir string) *Workspace {
	return &Workspace{dir: dir}
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string {
	return w.dir
}

// cacheDir returns the package-level directory: workspaceDir/<escaped>.
func (w *Workspace) cacheDir(name string) (string, error) {
	escaped, err := module.EscapePath(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(w.dir, escaped), nil
}

// InstallDir returns the install root of a package build:
// workspaceDir/<escaped>@<version>-<packageID>.
func (w *Workspace) InstallDir(name, version, pkgID string) (string, error) {
	escaped, err := module.EscapePath(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(w.dir, fmt.Sprintf("%s@%s-%s", escaped, version, pkgID)), nil
}

// Lookup returns the cache entry of a build whose install root still
// exists.
func (w *Workspace) Lookup(name, version, pkgID string) (*Entry, bool, error) {
	cache, err := w.loadCache(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	entry, ok := cache.get(version, pkgID)
	if !ok {
		return nil, false, nil
	}
	dir, err := w.InstallDir(name, version, pkgID)
	if err != nil {
		return nil, false, err
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, false, nil
	}
	return entry, true, nil
}

// Record stores entry for a build, replacing an older one.
func (w *Workspace) Record(name, version string, entry *Entry) error {
	dir, err := w.cacheDir(name)
	if err != nil {
		return err
	}
	unlock, err := lockedfile.MutexAt(filepath.Join(dir, lockFile)).Lock()
	if err != nil {
		return err
	}
	defer unlock()

	cache, err := w.loadCache(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cache = &buildCache{}
	}
	cache.set(version, entry.ID, entry)
	return w.saveCache(name, cache)
}

// loadCache reads the cache file of a package.
func (w *Workspace) loadCache(name string) (*buildCache, error) {
	dir, err := w.cacheDir(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, cacheFile))
	if err != nil {
		return nil, err
	}
	var cache buildCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(dir, cacheFile), err)
	}
	return &cache, nil
}

// saveCache writes the cache file of a package through a temporary file.
func (w *Workspace) saveCache(name string, cache *buildCache) error {
	dir, err := w.cacheDir(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, cacheFile+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, cacheFile))
}
