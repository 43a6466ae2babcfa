// Package pipeline runs a recipe end to end: options, requirements,
// dependency resolution, build, packaging and metadata. Stages run strictly
// in sequence and every failure is fatal; the install root is either
// replaced by a complete package or left as it was.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/goplus/recipe/internal/build"
	"github.com/goplus/recipe/internal/lockedfile"
	"github.com/goplus/recipe/internal/metrics"
	"github.com/goplus/recipe/internal/pack"
	"github.com/goplus/recipe/recipe"
)

// Request is one pipeline invocation.
type Request struct {
	Recipe   *recipe.Recipe
	Platform recipe.Platform
	// Options override declared defaults, applied in order.
	Options   []recipe.Assignment
	SourceDir string
}

// Plan is a configured, fully resolved request, ready to build.
type Plan struct {
	BuildID string
	Recipe  *recipe.Recipe
	Config  *recipe.ResolvedConfiguration
}

// Result is the outcome of a successful run.
type Result struct {
	BuildID     string
	Config      *recipe.ResolvedConfiguration
	InstallRoot string
	Files       []string
	Metadata    recipe.ConsumerMetadata
}

// Pipeline wires the resolver, the builder and the packaging engine.
type Pipeline struct {
	resolver recipe.Resolver
	builder  *build.Builder
	packer   *pack.Engine
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics records runs in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New returns a Pipeline resolving requirements with resolver and building
// with builder.
func New(resolver recipe.Resolver, builder *build.Builder, opts ...Option) *Pipeline {
	p := &Pipeline{resolver: resolver, builder: builder}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	p.packer = pack.New(p.logger)
	return p
}

// Configure resolves options for the target platform, computes the
// requirements from the frozen options and resolves every requirement.
// Nothing is built.
func (p *Pipeline) Configure(ctx context.Context, req Request) (*Plan, error) {
	r := req.Recipe.Clone()
	buildID := uuid.NewString()
	logger := p.logger.With("recipe", r.Name, "version", r.Version, "build_id", buildID)

	if err := r.Validate(); err != nil {
		return nil, err
	}

	stop := p.metrics.Stage(metrics.StageOptions)
	opts, err := r.NewOptions()
	if err != nil {
		stop()
		return nil, err
	}
	if err := opts.Set(req.Options...); err != nil {
		stop()
		return nil, err
	}
	set, err := opts.Resolve(req.Platform)
	stop()
	if err != nil {
		return nil, err
	}
	logger.Debug("options resolved", "platform", req.Platform.String(), "options", set.String())

	stop = p.metrics.Stage(metrics.StageRequires)
	reqs := r.Requires.Compute(set)
	stop()
	for _, rq := range reqs {
		logger.Debug("requirement", "requirement", rq.String())
	}

	stop = p.metrics.Stage(metrics.StageResolve)
	resolved, err := recipe.ResolveAll(ctx, p.resolver, reqs)
	stop()
	if err != nil {
		return nil, err
	}

	cfg := recipe.NewResolvedConfiguration(r, req.Platform, set, resolved, req.SourceDir)
	return &Plan{BuildID: buildID, Recipe: r, Config: cfg}, nil
}

// Execute builds plan and installs the package at installRoot. Packaging
// writes to a staging directory next to installRoot which replaces it only
// when every rule succeeded. Concurrent executions for the same install
// root are serialized by the lock file <installRoot>.lock.
func (p *Pipeline) Execute(ctx context.Context, plan *Plan, installRoot string) (*Result, error) {
	cfg := plan.Config
	logger := p.logger.With("recipe", cfg.Name(), "version", cfg.Version(), "build_id", plan.BuildID)

	stop := p.metrics.Stage(metrics.StageBuild)
	artifacts, err := p.builder.Build(ctx, cfg, cfg.SourceDir())
	stop()
	if err != nil {
		return nil, err
	}
	defer p.builder.Release(artifacts)

	stop = p.metrics.Stage(metrics.StagePackage)
	files, err := p.install(plan, artifacts, installRoot)
	stop()
	if err != nil {
		return nil, err
	}
	p.metrics.Packaged(len(files))
	logger.Info("installed", "install_root", installRoot, "files", len(files))

	stop = p.metrics.Stage(metrics.StagePublish)
	md := recipe.Publish(plan.Recipe, cfg.Requirements())
	stop()

	return &Result{
		BuildID:     plan.BuildID,
		Config:      cfg,
		InstallRoot: installRoot,
		Files:       files,
		Metadata:    md,
	}, nil
}

// Run configures and executes req.
func (p *Pipeline) Run(ctx context.Context, req Request, installRoot string) (*Result, error) {
	start := time.Now()
	plan, err := p.Configure(ctx, req)
	if err == nil {
		var res *Result
		res, err = p.Execute(ctx, plan, installRoot)
		if err == nil {
			p.metrics.Run("success")
			p.logger.Debug("pipeline done", "recipe", req.Recipe.Name, "elapsed", time.Since(start))
			return res, nil
		}
	}
	p.metrics.Run(ErrorKind(err))
	return nil, err
}

func (p *Pipeline) install(plan *Plan, artifacts *recipe.ArtifactSet, installRoot string) ([]string, error) {
	parent := filepath.Dir(installRoot)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, &recipe.PackagingIOError{Path: parent, Err: err}
	}
	unlock, err := lockedfile.MutexAt(installRoot + ".lock").Lock()
	if err != nil {
		return nil, &recipe.PackagingIOError{Path: installRoot + ".lock", Err: err}
	}
	defer unlock()

	staging, err := os.MkdirTemp(parent, "."+filepath.Base(installRoot)+".staging-*")
	if err != nil {
		return nil, &recipe.PackagingIOError{Path: parent, Err: err}
	}
	files, err := p.packer.Apply(plan.Recipe.Rules, artifacts, staging)
	if err != nil {
		os.RemoveAll(staging)
		return nil, err
	}
	if err := promote(staging, installRoot); err != nil {
		os.RemoveAll(staging)
		return nil, &recipe.PackagingIOError{Path: installRoot, Err: err}
	}
	return files, nil
}

// promote replaces dst by the directory staging. An existing dst is moved
// aside first and restored when the final rename fails.
func promote(staging, dst string) error {
	backup := ""
	if _, err := os.Lstat(dst); err == nil {
		backup = fmt.Sprintf("%s.old-%s", dst, uuid.NewString()[:8])
		if err := os.Rename(dst, backup); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.Rename(staging, dst); err != nil {
		if backup != "" {
			os.Rename(backup, dst)
		}
		return err
	}
	if backup != "" {
		os.RemoveAll(backup)
	}
	return nil
}

// ErrorKind classifies a pipeline error for metrics and exit reporting.
func ErrorKind(err error) string {
	var (
		dup        *recipe.DuplicateOptionError
		invalid    *recipe.InvalidValueError
		unknown    *recipe.UnknownOptionError
		frozen     *recipe.FrozenConfigurationError
		unresolved *recipe.UnresolvedDependencyError
		failed     *recipe.BuildFailedError
		packaging  *recipe.PackagingIOError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &unresolved):
		return "unresolved_dependency"
	case errors.As(err, &failed):
		return "build_failed"
	case errors.As(err, &packaging):
		return "packaging_io"
	case errors.As(err, &dup), errors.As(err, &invalid), errors.As(err, &unknown), errors.As(err, &frozen):
		return "invalid_configuration"
	}
	return "error"
}
