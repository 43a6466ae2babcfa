package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/goplus/recipe/recipe"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		args    []string
		want    []recipe.Assignment
		wantErr bool
	}{
		{nil, []recipe.Assignment{}, false},
		{[]string{"shared=true"}, []recipe.Assignment{{Name: "shared", Value: "true"}}, false},
		{[]string{"a=1", "b=x=y"}, []recipe.Assignment{{Name: "a", Value: "1"}, {Name: "b", Value: "x=y"}}, false},
		{[]string{"shared"}, nil, true},
		{[]string{"=true"}, nil, true},
	}
	for _, tt := range tests {
		got, err := parseOptions(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOptions(%q) err = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseOptions(%q) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestRequestPrecedence(t *testing.T) {
	dir := t.TempDir()
	prof := filepath.Join(dir, "linux.yaml")
	data := "settings:\n  os: Linux\n  arch: armv8\n  build_type: Debug\noptions:\n  shared: true\n  with_openssl: true\n"
	if err := os.WriteFile(prof, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	f := configureFlags{
		profile: prof,
		arch:    "x86_64",
		options: []string{"shared=false"},
	}
	req, err := f.request(&recipe.Recipe{Name: "demo", Version: "1"}, "src")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Platform.OS != "Linux" || req.Platform.Arch != "x86_64" || req.Platform.BuildType != "Debug" {
		t.Errorf("Platform = %+v", req.Platform)
	}
	want := []recipe.Assignment{
		{Name: "shared", Value: "true"},
		{Name: "with_openssl", Value: "true"},
		{Name: "shared", Value: "false"},
	}
	if !reflect.DeepEqual(req.Options, want) {
		t.Errorf("Options = %v, want %v", req.Options, want)
	}
	if req.SourceDir != "src" {
		t.Errorf("SourceDir = %q", req.SourceDir)
	}
}

func writeRecipes(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadRecipe(t *testing.T) {
	r, err := loadRecipe("clickhouse-cpp", "")
	if err != nil {
		t.Fatalf("loadRecipe(builtin): %v", err)
	}
	if r.Ref() != "clickhouse-cpp/2.5.0" {
		t.Errorf("Ref = %q", r.Ref())
	}

	if _, err := loadRecipe("no-such-recipe", ""); err == nil || !strings.Contains(err.Error(), "clickhouse-cpp") {
		t.Errorf("loadRecipe(unknown) err = %v, want list of built-in recipes", err)
	}

	if _, err := loadRecipe(t.TempDir(), ""); err == nil {
		t.Error("loadRecipe(empty dir) succeeded")
	}

	dir := writeRecipes(t, map[string]string{
		"A_recipe.gox": "name \"alpha\"\nversion \"1.0\"\n",
		"B_recipe.gox": "name \"beta\"\nversion \"0.2\"\n",
	})
	if _, err := loadRecipe(dir, ""); err == nil || !strings.Contains(err.Error(), "--name") {
		t.Errorf("loadRecipe(two recipes) err = %v", err)
	}
	r, err = loadRecipe(dir, "beta")
	if err != nil {
		t.Fatalf("loadRecipe(dir, beta): %v", err)
	}
	if r.Ref() != "beta/0.2" {
		t.Errorf("Ref = %q, want beta/0.2", r.Ref())
	}
	if _, err := loadRecipe(dir, "gamma"); err == nil || !strings.Contains(err.Error(), "no recipe named") {
		t.Errorf("loadRecipe(dir, gamma) err = %v", err)
	}
}

func TestFindRecipeFile(t *testing.T) {
	dir := writeRecipes(t, map[string]string{
		"A_recipe.gox":    "name \"alpha\"\nversion \"1.0\"\n",
		"B_recipe.gox":    "name \"alpha\"\nversion \"2.0\"\n",
		"C_recipe.gox":    "version \"3.0\"\n",
		"notes.txt":       "name \"beta\"",
		"Beta_recipe.gox": "name \"beta\"\nversion \"0.1\"\n",
	})

	path, err := findRecipeFile(dir, "beta")
	if err != nil {
		t.Fatalf("findRecipeFile(beta): %v", err)
	}
	if filepath.Base(path) != "Beta_recipe.gox" {
		t.Errorf("findRecipeFile(beta) = %s", path)
	}
	if _, err := findRecipeFile(dir, "alpha"); err == nil || !strings.Contains(err.Error(), "more than one file") {
		t.Errorf("findRecipeFile(alpha) err = %v", err)
	}
}

func TestInspect(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	reg := t.TempDir()
	for _, dir := range []string{
		"lz4/1.9.4/include",
		"abseil/20230125.3/include",
		"cityhash/cci.20130801/include",
	} {
		if err := os.MkdirAll(filepath.Join(reg, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"inspect", "clickhouse-cpp",
		"--workspace", t.TempDir(),
		"--registry", reg,
		"--os", "Windows",
		"--arch", "x86_64",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	var got inspectOutput
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if got.Name != "clickhouse-cpp" || got.Version != "2.5.0" {
		t.Errorf("name, version = %q, %q", got.Name, got.Version)
	}
	if _, ok := got.Options["fPIC"]; ok {
		t.Error("fPIC should be absent on Windows")
	}
	var names []string
	for _, r := range got.Requirements {
		names = append(names, r.Name)
	}
	if !reflect.DeepEqual(names, []string{"lz4", "abseil", "cityhash"}) {
		t.Errorf("requirements = %v", names)
	}
	if !reflect.DeepEqual(got.Metadata.LibraryNames, []string{"clickhouse-cpp"}) {
		t.Errorf("libs = %v", got.Metadata.LibraryNames)
	}
}

func TestInspectPicksRecipeByName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	dir := writeRecipes(t, map[string]string{
		"Alpha_recipe.gox": "name \"alpha\"\nversion \"1.0\"\n",
		"Beta_recipe.gox":  "name \"beta\"\nversion \"0.2\"\nboolOption \"shared\", true\n",
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"inspect", dir,
		"--name", "beta",
		"--workspace", t.TempDir(),
		"--registry", t.TempDir(),
		"--os", "Linux",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	var got inspectOutput
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if got.Name != "beta" || got.Version != "0.2" {
		t.Errorf("name, version = %q, %q", got.Name, got.Version)
	}
	if got.Options["shared"] != "true" {
		t.Errorf("options = %v", got.Options)
	}
}
