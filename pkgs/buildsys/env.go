package buildsys

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// UseRoot records in env the variables that let CMake, pkg-config and
// compilers find headers, libraries and pkg-config files of a dependency
// installed at root. Values already present in env or in the process
// environment are kept after the new entries.
func UseRoot(env map[string]string, root string) {
	includeDir := filepath.Join(root, "include")
	libDir := filepath.Join(root, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if isDir(pkgconfigDir) {
		PrependPath(env, "PKG_CONFIG_PATH", pkgconfigDir)
	}
	PrependPath(env, "CMAKE_PREFIX_PATH", root)
	if isDir(includeDir) {
		PrependPath(env, "CMAKE_INCLUDE_PATH", includeDir)
	}
	if isDir(libDir) {
		PrependPath(env, "CMAKE_LIBRARY_PATH", libDir)
	}

	if runtime.GOOS == "windows" {
		if isDir(includeDir) {
			PrependPath(env, "INCLUDE", includeDir)
		}
		if isDir(libDir) {
			PrependPath(env, "LIB", libDir)
		}
	} else {
		if isDir(includeDir) {
			AppendFlag(env, "CPPFLAGS", "-I"+includeDir)
		}
		if isDir(libDir) {
			AppendFlag(env, "LDFLAGS", "-L"+libDir)
		}
	}
}

// PrependPath prepends value to a PATH-style variable.
func PrependPath(env map[string]string, key, value string) {
	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}
	if cur := lookup(env, key); cur != "" {
		value += sep + cur
	}
	env[key] = value
}

// AppendFlag appends a space-separated flag to a variable.
func AppendFlag(env map[string]string, key, flag string) {
	if cur := lookup(env, key); cur != "" {
		flag = strings.TrimSpace(cur + " " + flag)
	}
	env[key] = flag
}

// MergeEnv returns base ("k=v" entries) with every key of override replaced
// or added, sorted by key.
func MergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base)+len(override))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

func lookup(env map[string]string, key string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return os.Getenv(key)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
