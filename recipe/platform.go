package recipe

import (
	"runtime"
	"slices"
	"strings"
)

// Platform describes the target a recipe is configured for.
type Platform struct {
	OS        string `yaml:"os" toml:"os" json:"os"`
	Arch      string `yaml:"arch" toml:"arch" json:"arch"`
	Compiler  string `yaml:"compiler,omitempty" toml:"compiler,omitempty" json:"compiler,omitempty"`
	BuildType string `yaml:"build_type,omitempty" toml:"build_type,omitempty" json:"build_type,omitempty"`
}

// HostPlatform returns the platform the process runs on, Release build type.
func HostPlatform() Platform {
	return Platform{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		BuildType: "Release",
	}
}

var windowsLike = []string{"windows", "windowsstore", "windowsce"}

// IsWindows reports whether the platform is Windows-like.
func (p Platform) IsWindows() bool {
	return slices.Contains(windowsLike, strings.ToLower(p.OS))
}

func (p Platform) String() string {
	s := p.OS + "-" + p.Arch
	if p.Compiler != "" {
		s += "-" + p.Compiler
	}
	if p.BuildType != "" {
		s += "-" + p.BuildType
	}
	return s
}

// Condition is a predicate over the target platform evaluated at
// configuration time.
type Condition func(Platform) bool

// Always holds on every platform.
func Always(Platform) bool { return true }

// OnWindows holds on Windows-like platforms.
func OnWindows(p Platform) bool { return p.IsWindows() }

// OnOS holds when the platform OS equals one of oses (case-insensitive).
// "windows" matches every Windows-like OS.
func OnOS(oses ...string) Condition {
	return func(p Platform) bool {
		for _, os := range oses {
			if strings.EqualFold(os, "windows") && p.IsWindows() {
				return true
			}
			if strings.EqualFold(os, p.OS) {
				return true
			}
		}
		return false
	}
}
