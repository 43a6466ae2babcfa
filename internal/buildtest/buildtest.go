// Package buildtest provides a scripted build tool for tests that must not
// depend on a real compiler.
package buildtest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/goplus/recipe/pkgs/buildsys"
)

// ExitError is returned by a failing fake build.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode returns the scripted exit code.
func (e *ExitError) ExitCode() int { return e.Code }

// Call records what the fake tool was asked to do in one invocation.
type Call struct {
	SourceDir string
	BuildDir  string
	BuildType string
	Defines   map[string]string
	Bools     map[string]bool
	Deps      []string
	Env       map[string]string
}

// Tool is a buildsys.Tool whose build writes Files (relative path to
// content) into OutputDir, the build directory when empty. With a non-zero
// ExitCode, Build writes Output to the tool output and fails instead.
type Tool struct {
	Files     map[string]string
	OutputDir string
	ExitCode  int
	Output    string

	mu    sync.Mutex
	calls []*Call
}

var _ buildsys.Tool = (*Tool)(nil)

func (t *Tool) Name() string { return "fake" }

// New returns a BuildSystem recording into a new Call.
func (t *Tool) New(buildDir string, out io.Writer) buildsys.BuildSystem {
	c := &Call{
		BuildDir: buildDir,
		Defines:  make(map[string]string),
		Bools:    make(map[string]bool),
		Env:      make(map[string]string),
	}
	t.mu.Lock()
	t.calls = append(t.calls, c)
	t.mu.Unlock()
	return &fakeBuild{tool: t, call: c, out: out}
}

// Calls returns the recorded invocations.
func (t *Tool) Calls() []*Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Call(nil), t.calls...)
}

// LastCall returns the most recent invocation or nil.
func (t *Tool) LastCall() *Call {
	calls := t.Calls()
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

type fakeBuild struct {
	tool *Tool
	call *Call
	out  io.Writer
}

func (f *fakeBuild) Use(root string)                   { f.call.Deps = append(f.call.Deps, root) }
func (f *fakeBuild) Source(dir string)                 { f.call.SourceDir = dir }
func (f *fakeBuild) BuildType(name string)             { f.call.BuildType = name }
func (f *fakeBuild) Env(key, val string)               { f.call.Env[key] = val }
func (f *fakeBuild) Define(key, value string)          { f.call.Defines[key] = value }
func (f *fakeBuild) DefineBool(key string, value bool) { f.call.Bools[key] = value }

func (f *fakeBuild) OutputDir() string {
	if f.tool.OutputDir != "" {
		return f.tool.OutputDir
	}
	return f.call.BuildDir
}

func (f *fakeBuild) Configure(ctx context.Context, args ...string) error {
	if _, err := os.Stat(f.call.SourceDir); err != nil {
		return fmt.Errorf("source directory: %w", err)
	}
	return ctx.Err()
}

func (f *fakeBuild) Build(ctx context.Context, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.tool.ExitCode != 0 {
		io.WriteString(f.out, f.tool.Output)
		return &ExitError{Code: f.tool.ExitCode}
	}
	if err := WriteTree(f.OutputDir(), f.tool.Files); err != nil {
		return err
	}
	io.WriteString(f.out, "fake build done\n")
	return nil
}

// WriteTree creates files (relative slash path to content) under root.
func WriteTree(root string, files map[string]string) error {
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
