// Package lockedfile provides a cross-process mutex backed by an advisory
// lock on a file.
package lockedfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// A Mutex provides mutual exclusion within and across processes by locking
// a well-known file. The lock file is created on first use and never
// removed; the lock is released when the holder unlocks or exits.
type Mutex struct {
	Path string
}

// MutexAt returns a new Mutex with Path set to the given non-empty path.
func MutexAt(path string) *Mutex {
	if path == "" {
		panic("lockedfile.MutexAt: path must be non-empty")
	}
	return &Mutex{Path: path}
}

func (mu *Mutex) String() string {
	return fmt.Sprintf("lockedfile.Mutex(%s)", mu.Path)
}

// Lock blocks until it holds mu and returns a function releasing it.
func (mu *Mutex) Lock() (unlock func(), err error) {
	if mu.Path == "" {
		panic("lockedfile.Mutex: missing Path during Lock")
	}
	if err := os.MkdirAll(filepath.Dir(mu.Path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(mu.Path, os.O_CREATE|os.O_RDWR, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", mu.Path, err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", mu.Path, err)
	}
	return func() {
		unlockFile(f)
		f.Close()
	}, nil
}
