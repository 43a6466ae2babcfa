package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/goplus/recipe/internal/build"
	"github.com/goplus/recipe/internal/loader"
	"github.com/goplus/recipe/internal/metrics"
	"github.com/goplus/recipe/internal/pipeline"
	"github.com/goplus/recipe/internal/profile"
	"github.com/goplus/recipe/internal/registry"
	"github.com/goplus/recipe/recipe"
	"github.com/goplus/recipe/recipes"
)

// configureFlags are the flags shared by the commands that configure a
// recipe.
type configureFlags struct {
	options   []string
	profile   string
	os        string
	arch      string
	compiler  string
	buildType string
	name      string
}

func (f *configureFlags) register(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&f.options, "option", "o", nil, "option value name=value (repeatable)")
	flags.StringVar(&f.profile, "profile", "", "build profile (.yaml or .toml)")
	flags.StringVar(&f.os, "os", "", "target OS (default host)")
	flags.StringVar(&f.arch, "arch", "", "target architecture (default host)")
	flags.StringVar(&f.compiler, "compiler", "", "target compiler")
	flags.StringVar(&f.buildType, "build-type", "", "build type (default Release)")
	flags.StringVar(&f.name, "name", "", "recipe name to pick when a directory holds several recipe files")
}

// platform returns the target platform: the host, then the profile
// settings, then the flags.
func (f *configureFlags) platform(prof *profile.Profile) recipe.Platform {
	p := recipe.HostPlatform()
	if prof != nil {
		p = prof.Platform(p)
	}
	for _, o := range []struct {
		dst *string
		val string
	}{
		{&p.OS, f.os},
		{&p.Arch, f.arch},
		{&p.Compiler, f.compiler},
		{&p.BuildType, f.buildType},
	} {
		if o.val != "" {
			*o.dst = o.val
		}
	}
	return p
}

// request assembles a pipeline request. Profile option values apply
// before the ones given with -o.
func (f *configureFlags) request(r *recipe.Recipe, sourceDir string) (pipeline.Request, error) {
	var prof *profile.Profile
	if f.profile != "" {
		p, err := profile.Load(f.profile)
		if err != nil {
			return pipeline.Request{}, err
		}
		prof = p
	}
	values, err := parseOptions(f.options)
	if err != nil {
		return pipeline.Request{}, err
	}
	if prof != nil {
		values = append(prof.OptionValues(), values...)
	}
	return pipeline.Request{
		Recipe:    r,
		Platform:  f.platform(prof),
		Options:   values,
		SourceDir: sourceDir,
	}, nil
}

func parseOptions(args []string) ([]recipe.Assignment, error) {
	values := make([]recipe.Assignment, 0, len(args))
	for _, arg := range args {
		a, err := recipe.ParseAssignment(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, a)
	}
	return values, nil
}

// loadRecipe returns the recipe named by arg: a built-in recipe name, a
// recipe file, or a directory holding recipe files. In a directory with
// several recipe files, name selects the one declaring that name.
func loadRecipe(arg, name string) (*recipe.Recipe, error) {
	if r, ok := recipes.Lookup(arg); ok {
		return r, nil
	}
	fi, err := os.Stat(arg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("unknown recipe %q (built-in recipes: %s)", arg, strings.Join(recipes.Names(), ", "))
		}
		return nil, err
	}
	path := arg
	if fi.IsDir() {
		if path, err = findRecipeFile(arg, name); err != nil {
			return nil, err
		}
	}
	l := loader.New(loader.WithLogger(logger), loader.WithOutput(os.Stderr, os.Stderr))
	return l.Load(path)
}

// findRecipeFile returns the recipe file of dir. Names are read from the
// files without evaluating them.
func findRecipeFile(dir, name string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+loader.Ext))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no recipe file (*%s) in %s", loader.Ext, dir)
	}
	if name == "" {
		if len(matches) > 1 {
			return "", fmt.Errorf("more than one recipe file in %s, pick one with --name: %s", dir, strings.Join(matches, ", "))
		}
		return matches[0], nil
	}

	var found []string
	for _, m := range matches {
		declared, err := loader.NameOf(m)
		if err != nil {
			logger.Warn("skipping recipe file", "file", m, "err", err)
			continue
		}
		if declared == name {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no recipe named %q in %s", name, dir)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("recipe %q declared by more than one file: %s", name, strings.Join(found, ", "))
}

// newPipeline wires a pipeline from the loaded configuration. toolName
// overrides the configured build tool when not empty.
func newPipeline(toolName string, m *metrics.Metrics) (*pipeline.Pipeline, error) {
	if toolName == "" {
		toolName = cfg.Tool
	}
	tool, err := build.ToolByName(toolName)
	if err != nil {
		return nil, err
	}
	workDir := filepath.Join(cfg.Workspace, "build")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, err
	}
	opts := []build.Option{
		build.WithLogger(logger),
		build.WithWorkDir(workDir),
		build.WithKeepBuildDir(cfg.KeepBuildDir),
	}
	if cfg.Verbose {
		opts = append(opts, build.WithStream(os.Stderr))
	}
	builder := build.NewBuilder(tool, opts...)
	resolver := registry.NewLocal(logger, cfg.Registry...)
	logger.Debug("using registry", "roots", resolver.Roots())
	return pipeline.New(resolver, builder, pipeline.WithLogger(logger), pipeline.WithMetrics(m)), nil
}
