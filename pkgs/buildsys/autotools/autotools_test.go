package autotools

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

func TestUseSetsEnv(t *testing.T) {
	tempDir := t.TempDir()
	includeDir := filepath.Join(tempDir, "include")
	libDir := filepath.Join(tempDir, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	for _, dir := range []string{includeDir, libDir, pkgconfigDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for _, key := range []string{"PKG_CONFIG_PATH", "CMAKE_PREFIX_PATH", "CPPFLAGS", "LDFLAGS", "INCLUDE", "LIB"} {
		t.Setenv(key, "")
	}

	a := New(t.TempDir(), nil)
	a.Use(tempDir)

	if got := a.env["PKG_CONFIG_PATH"]; got != pkgconfigDir {
		t.Fatalf("PKG_CONFIG_PATH = %q, want %q", got, pkgconfigDir)
	}
	if runtime.GOOS != "windows" {
		if got := a.env["CPPFLAGS"]; strings.TrimSpace(got) != "-I"+includeDir {
			t.Fatalf("CPPFLAGS = %q, want %q", got, "-I"+includeDir)
		}
		if got := a.env["LDFLAGS"]; strings.TrimSpace(got) != "-L"+libDir {
			t.Fatalf("LDFLAGS = %q, want %q", got, "-L"+libDir)
		}
	}
}

func TestConfigureArgs(t *testing.T) {
	a := New("build", nil)
	a.DefineBool("WITH_OPENSSL", false)
	a.DefineBool("shared", true)
	a.Define("CFLAGS", "-O2")
	a.Define("CC", "clang")

	got := a.configureArgs()
	want := []string{
		"--enable-shared",
		"--disable-with-openssl",
		"CC=clang",
		"CFLAGS=-O2",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("configureArgs = %q, want %q", got, want)
	}
}

func TestOutputDir(t *testing.T) {
	a := New("out/build", nil)
	if got := a.OutputDir(); got != "out/build" {
		t.Fatalf("OutputDir = %q, want %q", got, "out/build")
	}
}

const testConfigure = `#!/bin/sh
echo "CUSTOM=$CUSTOM" > config.log
for arg in "$@"; do
	echo "arg $arg" >> config.log
done
cat > Makefile <<'MK'
all:
	echo built > out.txt
MK
`

func TestConfigureBuildE2E(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("configure scripts need a POSIX shell")
	}
	for _, bin := range []string{"make", "sh"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not found in PATH", bin)
		}
	}

	tmp := t.TempDir()
	sourceDir := filepath.Join(tmp, "src")
	buildDir := filepath.Join(tmp, "build")
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "configure"), []byte(testConfigure), 0o755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	a := New(buildDir, &out)
	a.Env("CUSTOM", "VAL")
	a.Source(sourceDir)
	a.DefineBool("foo", true)

	ctx := context.Background()
	if err := a.Configure(ctx, "--prefix=/opt/x"); err != nil {
		t.Fatalf("configure: %v\n%s", err, out.String())
	}
	if err := a.Build(ctx); err != nil {
		t.Fatalf("build: %v\n%s", err, out.String())
	}

	data, err := os.ReadFile(filepath.Join(buildDir, "config.log"))
	if err != nil {
		t.Fatalf("read config.log: %v", err)
	}
	content := string(data)
	for _, snippet := range []string{"CUSTOM=VAL", "arg --enable-foo", "arg --prefix=/opt/x"} {
		if !strings.Contains(content, snippet) {
			t.Fatalf("config.log missing %q:\n%s", snippet, content)
		}
	}
	if _, err := os.Stat(filepath.Join(buildDir, "out.txt")); err != nil {
		t.Fatalf("make did not run: %v", err)
	}
}
