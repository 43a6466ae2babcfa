package recipe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/goplus/recipe/pkgs/buildsys"
)

// ResolvedConfiguration is the immutable input of a build: active options,
// resolved requirements and the source location.
type ResolvedConfiguration struct {
	name      string
	version   string
	platform  Platform
	options   OptionSet
	reqs      []ResolvedRequirement
	vars      []buildsys.Variable
	sourceDir string

	exports      []string
	sourceFolder string
	tool         string
}

// NewResolvedConfiguration materializes the configuration of r.
func NewResolvedConfiguration(r *Recipe, p Platform, opts OptionSet, reqs []ResolvedRequirement, sourceDir string) *ResolvedConfiguration {
	return &ResolvedConfiguration{
		name:         r.Name,
		version:      r.Version,
		platform:     p,
		options:      opts,
		reqs:         slices.Clone(reqs),
		vars:         r.Variables(opts),
		sourceDir:    sourceDir,
		exports:      slices.Clone(r.ExportsSources),
		sourceFolder: r.SourceFolder,
		tool:         r.Tool,
	}
}

func (c *ResolvedConfiguration) Name() string         { return c.name }
func (c *ResolvedConfiguration) Version() string      { return c.version }
func (c *ResolvedConfiguration) Platform() Platform   { return c.platform }
func (c *ResolvedConfiguration) Options() OptionSet   { return c.options }
func (c *ResolvedConfiguration) SourceDir() string    { return c.sourceDir }
func (c *ResolvedConfiguration) SourceFolder() string { return c.sourceFolder }
func (c *ResolvedConfiguration) Tool() string         { return c.tool }

// ExportsSources returns the source globs to stage for the build.
func (c *ResolvedConfiguration) ExportsSources() []string {
	return slices.Clone(c.exports)
}

// Requirements returns a copy of the resolved requirements.
func (c *ResolvedConfiguration) Requirements() []ResolvedRequirement {
	return slices.Clone(c.reqs)
}

// Variables returns a copy of the build-tool variables.
func (c *ResolvedConfiguration) Variables() []buildsys.Variable {
	return slices.Clone(c.vars)
}

// DependencyRoots returns the install paths of the resolved requirements.
func (c *ResolvedConfiguration) DependencyRoots() []string {
	roots := make([]string, 0, len(c.reqs))
	for _, r := range c.reqs {
		if r.Package != nil && r.Package.InstallPath != "" {
			roots = append(roots, r.Package.InstallPath)
		}
	}
	return roots
}

// PackageID returns a stable identifier of the binary this configuration
// produces: a hash of the platform, active option values and resolved
// requirement versions. The source location does not take part.
func (c *ResolvedConfiguration) PackageID() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s\n", c.name, c.version)
	fmt.Fprintf(&b, "os=%s\narch=%s\ncompiler=%s\nbuild_type=%s\n",
		c.platform.OS, c.platform.Arch, c.platform.Compiler, c.platform.BuildType)
	opts := c.options.All()
	slices.SortFunc(opts, func(a, b Option) int { return strings.Compare(a.Name, b.Name) })
	for _, o := range opts {
		fmt.Fprintf(&b, "option:%s=%s\n", o.Name, o.Value)
	}
	for _, r := range c.reqs {
		version := ""
		if r.Package != nil {
			version = r.Package.Version
		}
		fmt.Fprintf(&b, "require:%s:%s@%s\n", r.Scope, r.Name, version)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
