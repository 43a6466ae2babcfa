package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goplus/recipe/recipe"
)

const yamlProfile = `settings:
  os: Windows
  arch: x86_64
  compiler: msvc
options:
  shared: true
  with_openssl: "false"
`

const tomlProfile = `[settings]
os = "Macos"
build_type = "Debug"

[options]
enable_benchmark = true
`

func TestParseYAML(t *testing.T) {
	p, err := Parse([]byte(yamlProfile), "yaml")
	require.NoError(t, err)

	host := recipe.Platform{OS: "linux", Arch: "amd64", BuildType: "Release"}
	assert.Equal(t, recipe.Platform{OS: "Windows", Arch: "x86_64", Compiler: "msvc", BuildType: "Release"}, p.Platform(host))
	assert.True(t, p.Platform(host).IsWindows())
	assert.Equal(t, []recipe.Assignment{{Name: "shared", Value: "true"}, {Name: "with_openssl", Value: "false"}}, p.OptionValues())
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mac.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlProfile), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	got := p.Platform(recipe.Platform{OS: "linux", Arch: "arm64"})
	assert.Equal(t, recipe.Platform{OS: "Macos", Arch: "arm64", BuildType: "Debug"}, got)
	assert.Equal(t, []recipe.Assignment{{Name: "enable_benchmark", Value: "true"}}, p.OptionValues())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("settings: ["), "yaml")
	assert.Error(t, err)

	_, err = Parse([]byte("{}"), "json")
	assert.ErrorContains(t, err, "unsupported profile format")

	_, err = Parse([]byte("options:\n  shared: [1, 2]\n"), "yaml")
	assert.ErrorContains(t, err, "must be a scalar")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
