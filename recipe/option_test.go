package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOptions(t *testing.T) *Options {
	t.Helper()
	o := NewOptions()
	require.NoError(t, o.DeclareBool("shared", false))
	require.NoError(t, o.DeclareBool("fPIC", true))
	require.NoError(t, o.Declare("mode", OneOf("fast", "small"), "fast"))
	require.NoError(t, o.Remove("fPIC", OnWindows))
	return o
}

func TestDeclareDuplicate(t *testing.T) {
	o := newTestOptions(t)
	err := o.DeclareBool("shared", true)
	var dup *DuplicateOptionError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "shared", dup.Name)

	v, _ := o.Value("shared")
	assert.Equal(t, "false", v)
}

func TestDeclareInvalidDefault(t *testing.T) {
	err := NewOptions().Declare("mode", OneOf("a", "b"), "c")
	var invalid *InvalidValueError
	assert.True(t, errors.As(err, &invalid))
}

func TestSetInvalidValueKeepsValue(t *testing.T) {
	o := newTestOptions(t)
	for _, tt := range []struct{ name, value string }{
		{"shared", "maybe"},
		{"shared", ""},
		{"mode", "tiny"},
		{"mode", "FAST"},
	} {
		before, _ := o.Value(tt.name)
		err := o.SetDefault(tt.name, tt.value)
		var invalid *InvalidValueError
		require.True(t, errors.As(err, &invalid), "%s=%s", tt.name, tt.value)
		assert.Equal(t, tt.value, invalid.Value)
		after, _ := o.Value(tt.name)
		assert.Equal(t, before, after)
	}
}

func TestSetNormalizesBool(t *testing.T) {
	o := newTestOptions(t)
	require.NoError(t, o.SetDefault("shared", "True"))
	v, _ := o.Value("shared")
	assert.Equal(t, "true", v)
	require.NoError(t, o.SetDefault("shared", "0"))
	v, _ = o.Value("shared")
	assert.Equal(t, "false", v)
}

func TestSetUnknown(t *testing.T) {
	err := newTestOptions(t).Set(Assignment{Name: "with_ssl", Value: "true"})
	var unknown *UnknownOptionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "with_ssl", unknown.Name)
}

func TestSetStopsAtFirstFailure(t *testing.T) {
	o := newTestOptions(t)
	err := o.Set(
		Assignment{Name: "shared", Value: "true"},
		Assignment{Name: "mode", Value: "huge"},
		Assignment{Name: "fPIC", Value: "false"},
	)
	require.Error(t, err)
	v, _ := o.Value("shared")
	assert.Equal(t, "true", v)
	v, _ = o.Value("fPIC")
	assert.Equal(t, "true", v)
}

func TestResolveFreezes(t *testing.T) {
	o := newTestOptions(t)
	_, err := o.Resolve(Platform{OS: "Linux"})
	require.NoError(t, err)
	assert.True(t, o.Frozen())

	var frozen *FrozenConfigurationError
	assert.True(t, errors.As(o.SetDefault("shared", "true"), &frozen))
	assert.True(t, errors.As(o.DeclareBool("extra", false), &frozen))
	assert.True(t, errors.As(o.Remove("shared", Always), &frozen))
	_, err = o.Resolve(Platform{OS: "Linux"})
	assert.True(t, errors.As(err, &frozen))

	v, _ := o.Value("shared")
	assert.Equal(t, "false", v)
}

func TestResolveRemovesPerPlatform(t *testing.T) {
	tests := []struct {
		os       string
		wantFPIC bool
	}{
		{"Linux", true},
		{"Macos", true},
		{"Windows", false},
		{"windowsstore", false},
		{"WindowsCE", false},
	}
	for _, tt := range tests {
		set, err := newTestOptions(t).Resolve(Platform{OS: tt.os, Arch: "x86_64"})
		require.NoError(t, err)
		assert.Equal(t, tt.wantFPIC, set.Has("fPIC"), tt.os)
		assert.Equal(t, 2+boolToInt(tt.wantFPIC), set.Len(), tt.os)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestActiveOptionsIsPure(t *testing.T) {
	decls := []Option{
		{Name: "a", Domain: Bool(), Value: "true"},
		{Name: "b", Domain: Bool(), Value: "false"},
	}
	removals := []Removal{{Name: "a", When: OnOS("linux")}}

	got := ActiveOptions(decls, removals, Platform{OS: "Linux"})
	assert.Equal(t, []Option{decls[1]}, got)
	assert.Len(t, decls, 2)

	got = ActiveOptions(decls, removals, Platform{OS: "Windows"})
	assert.Equal(t, decls, got)
}

func TestOptionSet(t *testing.T) {
	set := NewOptionSet(
		Option{Name: "shared", Domain: Bool(), Value: "true"},
		Option{Name: "mode", Domain: OneOf("fast", "small"), Value: "small"},
	)
	assert.True(t, set.Bool("shared"))
	assert.False(t, set.Bool("mode"))
	assert.False(t, set.Bool("missing"))
	assert.Equal(t, "small", set.Value("mode"))
	assert.Equal(t, "", set.Value("missing"))
	assert.Equal(t, "shared=true,mode=small", set.String())

	all := set.All()
	all[0].Value = "false"
	assert.True(t, set.Bool("shared"), "All returns a copy")
}

func TestParseAssignment(t *testing.T) {
	a, err := ParseAssignment(" shared = true ")
	require.NoError(t, err)
	assert.Equal(t, Assignment{Name: "shared", Value: "true"}, a)
	assert.Equal(t, "shared=true", a.String())

	a, err = ParseAssignment("flags=-O2 -g")
	require.NoError(t, err)
	assert.Equal(t, "-O2 -g", a.Value)

	for _, s := range []string{"shared", "=true", ""} {
		_, err := ParseAssignment(s)
		assert.Error(t, err, s)
	}
}

func TestDomain(t *testing.T) {
	d := OneOf("a", "b")
	assert.False(t, d.IsBool())
	assert.Equal(t, []string{"a", "b"}, d.Values())
	assert.Equal(t, "{a, b}", d.String())

	v, ok := Bool().Normalize("1")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
	_, ok = Bool().Normalize("yes")
	assert.False(t, ok)
}
