package buildsys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Variable is a build-tool variable derived from a resolved option.
type Variable struct {
	Name  string
	Value string
	Bool  bool
}

// BuildSystem captures shared capabilities of build helpers (CMake, Autotools, etc).
// It keeps the common lifecycle and dependency/env setup; implementations add their own extras.
type BuildSystem interface {
	// Use injects a dependency installed at root into the environment.
	Use(root string)

	// Basic paths.
	Source(dir string)

	// Environment and variables.
	Env(key, val string)
	Define(key, value string)
	DefineBool(key string, value bool)

	// Lifecycle.
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error

	// Where artifacts land.
	OutputDir() string
}

// Tool creates build helpers bound to a build directory. Command output of
// the helper goes to out.
type Tool interface {
	Name() string
	New(buildDir string, out io.Writer) BuildSystem
}

// Invocation is one call of an external build tool.
type Invocation struct {
	SourceDir string // configuration root
	BuildDir  string // binary dir, also the output root
	BuildType string
	Variables []Variable
	Deps      []string // install roots of resolved dependencies
	Env       map[string]string
}

// Result is the outcome of Run.
type Result struct {
	ExitCode  int
	OutputDir string
}

// Run configures and builds inv with tool. On failure the returned Result
// carries the tool's exit code, -1 when the tool could not be started.
func Run(ctx context.Context, tool Tool, inv Invocation, out io.Writer) (Result, error) {
	if out == nil {
		out = io.Discard
	}
	bs := tool.New(inv.BuildDir, out)
	bs.Source(inv.SourceDir)
	if bt, ok := bs.(interface{ BuildType(string) }); ok && inv.BuildType != "" {
		bt.BuildType(inv.BuildType)
	}

	keys := make([]string, 0, len(inv.Env))
	for k := range inv.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		bs.Env(k, inv.Env[k])
	}
	for _, root := range inv.Deps {
		bs.Use(root)
	}
	for _, v := range inv.Variables {
		if v.Bool {
			bs.DefineBool(v.Name, v.Value == "true")
			continue
		}
		bs.Define(v.Name, v.Value)
	}

	if err := bs.Configure(ctx); err != nil {
		return Result{ExitCode: ExitCode(err)}, fmt.Errorf("%s configure: %w", tool.Name(), err)
	}
	if err := bs.Build(ctx); err != nil {
		return Result{ExitCode: ExitCode(err)}, fmt.Errorf("%s build: %w", tool.Name(), err)
	}
	return Result{OutputDir: bs.OutputDir()}, nil
}

// ExitCode extracts the process exit code from err, -1 if there is none.
// Any error in the chain with an ExitCode method, such as *exec.ExitError,
// provides it.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}
