// Package build runs the external build tool against a resolved
// configuration.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/goplus/recipe/internal/fsutil"
	"github.com/goplus/recipe/pkgs/buildsys"
	"github.com/goplus/recipe/pkgs/buildsys/autotools"
	"github.com/goplus/recipe/pkgs/buildsys/cmake"
	"github.com/goplus/recipe/recipe"
)

// maxOutput bounds the tool output kept for BuildFailedError.
const maxOutput = 64 << 10

// Builder runs one build tool.
type Builder struct {
	tool    buildsys.Tool
	logger  *log.Logger
	stream  io.Writer
	workDir string
	keepDir bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger of the builder.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithStream copies the tool output to w while it runs.
func WithStream(w io.Writer) Option {
	return func(b *Builder) { b.stream = w }
}

// WithWorkDir sets the directory under which build directories are
// created, os.TempDir() by default.
func WithWorkDir(dir string) Option {
	return func(b *Builder) { b.workDir = dir }
}

// WithKeepBuildDir keeps build directories for inspection, whether the
// build or a later stage failed.
func WithKeepBuildDir(keep bool) Option {
	return func(b *Builder) { b.keepDir = keep }
}

// NewBuilder returns a Builder invoking tool.
func NewBuilder(tool buildsys.Tool, opts ...Option) *Builder {
	b := &Builder{tool: tool}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	return b
}

// Build stages the exported sources of cfg from sourceRoot into a fresh
// build directory, then configures and builds it. The returned ArtifactSet
// is always rooted at the build directory, which holds the staged sources
// and the compiled outputs side by side. A tool whose output directory lies
// outside the build directory has its outputs copied in; that directory is
// left untouched. The caller hands the set back to Release once packaging
// is done.
//
// Any failure, including a failure to stage the sources, is reported as a
// *recipe.BuildFailedError. Builds are never retried.
func (b *Builder) Build(ctx context.Context, cfg *recipe.ResolvedConfiguration, sourceRoot string) (*recipe.ArtifactSet, error) {
	logger := b.logger.With("recipe", cfg.Name(), "version", cfg.Version())

	buildDir, err := os.MkdirTemp(b.workDir, cfg.Name()+"-build-*")
	if err != nil {
		return nil, &recipe.BuildFailedError{ExitCode: -1, Err: err}
	}
	fail := func(code int, output []byte, err error) (*recipe.ArtifactSet, error) {
		if b.keepDir {
			logger.Warn("build directory kept", "dir", buildDir)
		} else {
			os.RemoveAll(buildDir)
		}
		return nil, &recipe.BuildFailedError{ExitCode: code, Output: output, Err: err}
	}

	n, err := stageSources(sourceRoot, buildDir, cfg.ExportsSources())
	if err != nil {
		return fail(-1, nil, fmt.Errorf("stage sources: %w", err))
	}
	logger.Debug("sources staged", "files", n, "dir", buildDir)

	out := &tailBuffer{max: maxOutput}
	var w io.Writer = out
	if b.stream != nil {
		w = io.MultiWriter(out, b.stream)
	}

	inv := buildsys.Invocation{
		SourceDir: filepath.Join(buildDir, cfg.SourceFolder()),
		BuildDir:  buildDir,
		BuildType: cfg.Platform().BuildType,
		Variables: cfg.Variables(),
		Deps:      cfg.DependencyRoots(),
	}
	logger.Info("building", "tool", b.tool.Name(), "source", inv.SourceDir)
	res, err := buildsys.Run(ctx, b.tool, inv, w)
	if err != nil {
		logger.Error("build failed", "exit_code", res.ExitCode, "err", err)
		return fail(res.ExitCode, out.Bytes(), err)
	}

	if out := res.OutputDir; out != "" && !within(buildDir, out) {
		logger.Debug("collecting outputs", "dir", out)
		if err := fsutil.CopyDir(out, buildDir); err != nil {
			return fail(-1, nil, fmt.Errorf("collect outputs of %s: %w", out, err))
		}
	}
	return &recipe.ArtifactSet{Root: buildDir}, nil
}

// Release removes the build directory of as, unless the builder keeps
// build directories.
func (b *Builder) Release(as *recipe.ArtifactSet) {
	if as == nil || as.Root == "" {
		return
	}
	if b.keepDir {
		b.logger.Warn("build directory kept", "dir", as.Root)
		return
	}
	os.RemoveAll(as.Root)
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// stageSources copies the files of sourceRoot matching patterns into dst.
// A matched directory is copied with its whole content. No pattern means
// the whole tree.
func stageSources(sourceRoot, dst string, patterns []string) (int, error) {
	fi, err := os.Stat(sourceRoot)
	if err != nil {
		return 0, err
	}
	if !fi.IsDir() {
		return 0, fmt.Errorf("source root %s is not a directory", sourceRoot)
	}
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}

	fsys := os.DirFS(sourceRoot)
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return 0, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			rel := filepath.FromSlash(m)
			if err := fsutil.Copy(filepath.Join(sourceRoot, rel), filepath.Join(dst, rel)); err != nil {
				return 0, err
			}
		}
	}
	return len(seen), nil
}

// ToolByName returns the build tool called name. An empty name selects cmake.
func ToolByName(name string) (buildsys.Tool, error) {
	switch name {
	case "", "cmake":
		return cmake.Tool{}, nil
	case "autotools":
		return autotools.Tool{}, nil
	}
	return nil, fmt.Errorf("unknown build tool %q", name)
}
