//go:build !unix && !windows

package lockedfile

import (
	"os"
	"sync"
)

// Platforms without advisory file locks only get in-process exclusion.
var mu sync.Mutex

func lockFile(*os.File) error {
	mu.Lock()
	return nil
}

func unlockFile(*os.File) error {
	mu.Unlock()
	return nil
}
