// Package profile reads build profiles: target platform settings plus
// option values, written in YAML or TOML.
//
//	settings:
//	  os: linux
//	  arch: amd64
//	  build_type: Release
//	options:
//	  shared: true
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goplus/recipe/recipe"
)

// Profile is a parsed build profile.
type Profile struct {
	Settings recipe.Platform `yaml:"settings" toml:"settings"`
	Options  map[string]any  `yaml:"options" toml:"options"`
}

// Load reads a profile file; the format follows the extension (.yaml,
// .yml or .toml).
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes data in format "yaml", "yml" or "toml".
func Parse(data []byte, format string) (*Profile, error) {
	var p Profile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported profile format %q", format)
	}
	for name, v := range p.Options {
		switch v.(type) {
		case string, bool, int, int64, uint64, float64:
		default:
			return nil, fmt.Errorf("option %s: value must be a scalar, got %T", name, v)
		}
	}
	return &p, nil
}

// Platform returns base with every setting of p that is set.
func (p *Profile) Platform(base recipe.Platform) recipe.Platform {
	s := p.Settings
	if s.OS != "" {
		base.OS = s.OS
	}
	if s.Arch != "" {
		base.Arch = s.Arch
	}
	if s.Compiler != "" {
		base.Compiler = s.Compiler
	}
	if s.BuildType != "" {
		base.BuildType = s.BuildType
	}
	return base
}

// OptionValues returns the option values as assignments, sorted by name.
func (p *Profile) OptionValues() []recipe.Assignment {
	names := make([]string, 0, len(p.Options))
	for name := range p.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]recipe.Assignment, len(names))
	for i, name := range names {
		values[i] = recipe.Assignment{Name: name, Value: fmt.Sprint(p.Options[name])}
	}
	return values
}
