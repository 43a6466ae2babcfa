package lockedfile

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMutexExcludes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "root.lock")

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate Mutex values share nothing but the path.
			unlock, err := MutexAt(path).Lock()
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(10 * time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if got := maxSeen.Load(); got != 1 {
		t.Fatalf("max holders = %d, want 1", got)
	}
}

func TestMutexRelock(t *testing.T) {
	mu := MutexAt(filepath.Join(t.TempDir(), "x.lock"))
	for i := 0; i < 2; i++ {
		unlock, err := mu.Lock()
		if err != nil {
			t.Fatalf("Lock #%d: %v", i, err)
		}
		unlock()
	}
}

func TestMutexAtEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MutexAt(\"\") did not panic")
		}
	}()
	MutexAt("")
}
