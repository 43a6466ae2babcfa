// Package recipes is the registry of built-in recipes. Recipe packages
// register themselves from init; import them for their side effect.
package recipes

import (
	"fmt"
	"slices"
	"sync"

	"github.com/goplus/recipe/recipe"
)

var (
	mu       sync.RWMutex
	builtins = make(map[string]func() *recipe.Recipe)
)

// Register makes a built-in recipe available by name. It panics when name
// is registered twice.
func Register(name string, fn func() *recipe.Recipe) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := builtins[name]; dup {
		panic(fmt.Sprintf("recipes: %s registered twice", name))
	}
	builtins[name] = fn
}

// Lookup returns a fresh copy of the built-in recipe called name.
func Lookup(name string) (*recipe.Recipe, bool) {
	mu.RLock()
	fn, ok := builtins[name]
	mu.RUnlock()
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Names returns the registered recipe names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
