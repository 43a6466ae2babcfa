// Package cmake wraps the cmake configure/build workflow.
package cmake

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/goplus/recipe/pkgs/buildsys"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake drives CMake-based builds.
type CMake struct {
	sourceDir string
	buildDir  string
	generator string
	buildType string
	toolchain string
	defines   map[string]defineValue
	env       map[string]string
	out       io.Writer
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New returns a CMake helper whose binary dir is buildDir. Command output
// goes to out, or to the process stdout/stderr when out is nil.
func New(buildDir string, out io.Writer) *CMake {
	return &CMake{
		buildDir: buildDir,
		defines:  make(map[string]defineValue),
		env:      make(map[string]string),
		out:      out,
	}
}

// Source sets the source directory.
func (c *CMake) Source(dir string) { c.sourceDir = dir }

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) { c.generator = name }

// BuildType sets CMAKE_BUILD_TYPE (e.g. "Release", "Debug").
func (c *CMake) BuildType(name string) { c.buildType = name }

// Toolchain sets CMAKE_TOOLCHAIN_FILE.
func (c *CMake) Toolchain(path string) { c.toolchain = path }

// Env sets key=value for every command spawned later.
func (c *CMake) Env(key, value string) { c.env[key] = value }

// Define adds a -D<key>:STRING=<value> definition.
func (c *CMake) Define(key, value string) {
	c.defines[key] = defineValue{value: value, typeName: "STRING"}
}

// DefineBool adds a -D<key>:BOOL=ON/OFF definition.
func (c *CMake) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	c.defines[key] = defineValue{value: v, typeName: "BOOL"}
}

// Use makes headers, libraries and pkg-config files of the dependency
// installed at root visible to CMake and the compilers.
func (c *CMake) Use(root string) {
	buildsys.UseRoot(c.env, root)
}

// Configure runs "cmake -S <source> -B <build>" with all configured options.
// Extra args are appended at the end.
func (c *CMake) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return err
	}
	cmakeArgs := []string{"-S", c.sourceDir, "-B", c.buildDir}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	cmakeArgs = append(cmakeArgs, args...)
	return c.run(ctx, "cmake", cmakeArgs)
}

// Build runs "cmake --build <build>" with optional extra arguments.
func (c *CMake) Build(ctx context.Context, args ...string) error {
	cmakeArgs := []string{"--build", c.buildDir}
	if c.buildType != "" {
		cmakeArgs = append(cmakeArgs, "--config", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, args...)
	return c.run(ctx, "cmake", cmakeArgs)
}

// OutputDir returns the binary dir.
func (c *CMake) OutputDir() string {
	return c.buildDir
}

func (c *CMake) run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if c.out != nil {
		cmd.Stdout = c.out
		cmd.Stderr = c.out
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if len(c.env) > 0 {
		cmd.Env = buildsys.MergeEnv(os.Environ(), c.env)
	}
	return cmd.Run()
}

func (c *CMake) definesArgs() []string {
	if len(c.defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.defines))
	for k := range c.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		d := c.defines[k]
		args = append(args, "-D"+k+":"+d.typeName+"="+d.value)
	}
	return args
}

// -----------------------------------------------------------------------------

// Tool is the cmake build tool.
type Tool struct {
	Generator string
	Toolchain string
}

var _ buildsys.Tool = Tool{}

func (Tool) Name() string { return "cmake" }

// New returns a CMake helper for buildDir.
func (t Tool) New(buildDir string, out io.Writer) buildsys.BuildSystem {
	c := New(buildDir, out)
	if t.Generator != "" {
		c.Generator(t.Generator)
	}
	if t.Toolchain != "" {
		c.Toolchain(t.Toolchain)
	}
	return c
}
