// Package autotools wraps the classic configure/make workflow.
package autotools

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goplus/recipe/pkgs/buildsys"
)

// AutoTools drives Autotools-style builds.
type AutoTools struct {
	sourceDir string
	buildDir  string
	vars      map[string]string
	features  map[string]bool
	env       map[string]string
	out       io.Writer
}

var _ buildsys.BuildSystem = (*AutoTools)(nil)

// New returns an AutoTools helper running configure and make in buildDir.
func New(buildDir string, out io.Writer) *AutoTools {
	return &AutoTools{
		buildDir: buildDir,
		vars:     make(map[string]string),
		features: make(map[string]bool),
		env:      make(map[string]string),
		out:      out,
	}
}

// Source sets the directory holding the configure script.
func (a *AutoTools) Source(dir string) { a.sourceDir = dir }

// Env sets key=value for every command spawned later.
func (a *AutoTools) Env(key, value string) { a.env[key] = value }

// Define passes KEY=value to configure.
func (a *AutoTools) Define(key, value string) { a.vars[key] = value }

// DefineBool passes --enable-<key> or --disable-<key> to configure.
// The key is lowercased and "_" becomes "-".
func (a *AutoTools) DefineBool(key string, value bool) {
	a.features[strings.ReplaceAll(strings.ToLower(key), "_", "-")] = value
}

// Use adds include/lib/pkgconfig paths of a dependency installed at root.
func (a *AutoTools) Use(root string) {
	buildsys.UseRoot(a.env, root)
}

// Configure runs <sourceDir>/configure inside buildDir. Extra flags are
// appended after the generated ones.
func (a *AutoTools) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(a.buildDir, 0o755); err != nil {
		return err
	}
	exe, err := filepath.Abs(filepath.Join(a.sourceDir, "configure"))
	if err != nil {
		return err
	}
	return a.run(ctx, exe, append(a.configureArgs(), args...))
}

// Build runs "make" with optional extra arguments.
func (a *AutoTools) Build(ctx context.Context, args ...string) error {
	return a.run(ctx, "make", args)
}

// OutputDir returns the build dir.
func (a *AutoTools) OutputDir() string {
	return a.buildDir
}

func (a *AutoTools) configureArgs() []string {
	names := make([]string, 0, len(a.features))
	for k := range a.features {
		names = append(names, k)
	}
	sort.Strings(names)
	args := make([]string, 0, len(a.features)+len(a.vars))
	for _, name := range names {
		if a.features[name] {
			args = append(args, "--enable-"+name)
		} else {
			args = append(args, "--disable-"+name)
		}
	}
	keys := make([]string, 0, len(a.vars))
	for k := range a.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, k+"="+a.vars[k])
	}
	return args
}

func (a *AutoTools) run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = a.buildDir
	if a.out != nil {
		cmd.Stdout = a.out
		cmd.Stderr = a.out
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if len(a.env) > 0 {
		cmd.Env = buildsys.MergeEnv(os.Environ(), a.env)
	}
	return cmd.Run()
}

// -----------------------------------------------------------------------------

// Tool is the autotools build tool.
type Tool struct{}

var _ buildsys.Tool = Tool{}

func (Tool) Name() string { return "autotools" }

// New returns an AutoTools helper for buildDir.
func (Tool) New(buildDir string, out io.Writer) buildsys.BuildSystem {
	return New(buildDir, out)
}
