package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goplus/recipe/pkgs/buildsys"
)

func demoRecipe(t *testing.T) *Recipe {
	t.Helper()
	var f RecipeF
	f.Name("demo")
	f.Version("1.0.0")
	f.License("MIT")
	f.Topics("demo")
	f.ExportsSources("demo/*")
	f.SourceFolder("demo")
	f.BoolOption("shared", false)
	f.BoolOption("fPIC", true)
	f.Option("mode", []string{"fast", "small"}, "fast")
	f.RemoveOptionOn("fPIC", "windows")
	f.RequiresTransitive("abseil", "20230125.3")
	f.Requires("lz4", "1.9.4")
	f.BuildRequires("cmake", ">=3.20")
	f.ToolVar("shared", "BUILD_SHARED_LIBS")
	f.Define("CMAKE_CXX_STANDARD", "17")
	f.DefineBool("WITH_SYSTEM_LZ4", true)
	f.Pack("*.h", "demo", "include/demo")
	f.PackKeepPath("*.hpp", "demo", "include/demo")
	f.Libs("demo")
	f.SystemLibs("m")
	f.LinkFlags("-pthread")
	r, err := f.Recipe()
	require.NoError(t, err)
	return r
}

func TestRecipeF(t *testing.T) {
	r := demoRecipe(t)
	assert.Equal(t, "demo/1.0.0", r.Ref())
	assert.Len(t, r.Options, 3)
	assert.Equal(t, "false", r.Options[0].Default)
	assert.True(t, r.Options[0].Domain.IsBool())
	assert.Equal(t, 3, r.Requires.Len())
	assert.Equal(t, []PackagingRule{
		{Pattern: "*.h", Src: "demo", Dst: "include/demo", Flatten: true},
		{Pattern: "*.hpp", Src: "demo", Dst: "include/demo"},
	}, r.Rules)
}

func TestRecipeValidate(t *testing.T) {
	var f RecipeF
	_, err := f.Recipe()
	assert.ErrorContains(t, err, "no name")

	f.Name("x")
	f.Version("1")
	f.BoolOption("shared", false)
	f.BoolOption("shared", true)
	_, err = f.Recipe()
	var dup *DuplicateOptionError
	assert.ErrorAs(t, err, &dup)

	var g RecipeF
	g.Name("x")
	g.Version("1")
	g.Option("mode", []string{"a"}, "b")
	_, err = g.Recipe()
	var invalid *InvalidValueError
	assert.ErrorAs(t, err, &invalid)
}

func TestRecipeClone(t *testing.T) {
	r := demoRecipe(t)
	c := r.Clone()
	c.Libs[0] = "changed"
	c.ToolVars["shared"] = "changed"
	c.Requires.Add("zlib", "1.3", false)
	c.Rules = append(c.Rules, PackagingRule{Pattern: "*.a", Dst: "lib"})

	assert.Equal(t, "demo", r.Libs[0])
	assert.Equal(t, "BUILD_SHARED_LIBS", r.ToolVars["shared"])
	assert.Equal(t, 3, r.Requires.Len())
	assert.Len(t, r.Rules, 2)
}

func TestVariables(t *testing.T) {
	r := demoRecipe(t)
	opts, err := r.NewOptions()
	require.NoError(t, err)
	set, err := opts.Resolve(Platform{OS: "Linux"})
	require.NoError(t, err)

	assert.Equal(t, []buildsys.Variable{
		{Name: "BUILD_SHARED_LIBS", Value: "false", Bool: true},
		{Name: "fPIC", Value: "true", Bool: true},
		{Name: "mode", Value: "fast"},
		{Name: "CMAKE_CXX_STANDARD", Value: "17"},
		{Name: "WITH_SYSTEM_LZ4", Value: "true", Bool: true},
	}, r.Variables(set))
}

func TestPlatform(t *testing.T) {
	for _, os := range []string{"Windows", "windows", "WindowsStore", "windowsce"} {
		assert.True(t, Platform{OS: os}.IsWindows(), os)
	}
	for _, os := range []string{"Linux", "Macos", "win", ""} {
		assert.False(t, Platform{OS: os}.IsWindows(), os)
	}
	assert.Equal(t, "Linux-x86_64-gcc-Release", Platform{OS: "Linux", Arch: "x86_64", Compiler: "gcc", BuildType: "Release"}.String())
	assert.Equal(t, "Release", HostPlatform().BuildType)

	onLinux := OnOS("linux", "freebsd")
	assert.True(t, onLinux(Platform{OS: "Linux"}))
	assert.False(t, onLinux(Platform{OS: "Macos"}))
	assert.True(t, OnOS("windows")(Platform{OS: "WindowsStore"}))
	assert.True(t, Always(Platform{}))
}

func TestPublish(t *testing.T) {
	r := demoRecipe(t)
	reqs := []ResolvedRequirement{
		{Requirement: Requirement{Name: "abseil", Propagate: true, Scope: ScopeRuntime}},
		{Requirement: Requirement{Name: "lz4", Scope: ScopeRuntime}},
		{Requirement: Requirement{Name: "cmake", Propagate: true, Scope: ScopeBuild}},
	}
	md := Publish(r, reqs)
	assert.Equal(t, ConsumerMetadata{
		LibraryNames:    []string{"demo"},
		SystemLibraries: []string{"m"},
		LinkFlags:       []string{"-pthread"},
		Requires:        []string{"abseil"},
	}, md)
	assert.Equal(t, "-pthread -ldemo -lm", md.Flags())

	md.LibraryNames[0] = "changed"
	assert.Equal(t, "demo", r.Libs[0])
}

func TestResolvedConfiguration(t *testing.T) {
	r := demoRecipe(t)
	p := Platform{OS: "Linux", Arch: "x86_64", BuildType: "Release"}
	newConfig := func(sourceDir string, shared string, lz4 string) *ResolvedConfiguration {
		opts, err := r.NewOptions()
		require.NoError(t, err)
		require.NoError(t, opts.SetDefault("shared", shared))
		set, err := opts.Resolve(p)
		require.NoError(t, err)
		reqs := []ResolvedRequirement{
			{Requirement: Requirement{Name: "lz4"}, Package: &ResolvedPackage{Name: "lz4", Version: lz4, InstallPath: "/reg/lz4/" + lz4}},
			{Requirement: Requirement{Name: "cmake", Scope: ScopeBuild}, Package: &ResolvedPackage{Name: "cmake", Version: "3.27"}},
		}
		return NewResolvedConfiguration(r, p, set, reqs, sourceDir)
	}

	c := newConfig("/src/a", "false", "1.9.4")
	assert.Equal(t, "demo", c.Name())
	assert.Equal(t, "1.0.0", c.Version())
	assert.Equal(t, "demo", c.SourceFolder())
	assert.Equal(t, []string{"demo/*"}, c.ExportsSources())
	assert.Equal(t, []string{"/reg/lz4/1.9.4"}, c.DependencyRoots())
	assert.Len(t, c.PackageID(), 16)

	assert.Equal(t, c.PackageID(), newConfig("/src/b", "false", "1.9.4").PackageID(), "source dir is not part of the ID")
	assert.NotEqual(t, c.PackageID(), newConfig("/src/a", "true", "1.9.4").PackageID())
	assert.NotEqual(t, c.PackageID(), newConfig("/src/a", "false", "1.9.3").PackageID())
}
