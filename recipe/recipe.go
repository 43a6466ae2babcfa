package recipe

import (
	"errors"
	"fmt"
	"slices"

	"github.com/goplus/recipe/pkgs/buildsys"
)

// OptionDecl declares an option and its default value.
type OptionDecl struct {
	Name    string
	Domain  Domain
	Default string
}

// Define is a fixed build-tool variable.
type Define struct {
	Name  string
	Value string
	Bool  bool
}

// Recipe describes how one package is configured, built and repackaged.
type Recipe struct {
	Name        string
	Version     string
	Description string
	License     string
	Homepage    string
	Topics      []string

	// Tool names the build tool ("cmake" when empty).
	Tool string
	// ExportsSources selects, by glob, the files of the source root the
	// build needs. Everything is taken when empty.
	ExportsSources []string
	// SourceFolder is the configuration root relative to the build dir.
	SourceFolder string

	Options  []OptionDecl
	Removals []Removal
	Requires Requirements

	// ToolVars maps option names to build-tool variable names.
	ToolVars map[string]string
	Defines  []Define

	Rules []PackagingRule

	Libs       []string
	SystemLibs []string
	LinkFlags  []string
}

// Ref returns "name/version".
func (r *Recipe) Ref() string {
	return r.Name + "/" + r.Version
}

// NewOptions returns a fresh option registry holding the declared options
// and removal rules of r.
func (r *Recipe) NewOptions() (*Options, error) {
	opts := NewOptions()
	for _, d := range r.Options {
		if err := opts.Declare(d.Name, d.Domain, d.Default); err != nil {
			return nil, err
		}
	}
	for _, rm := range r.Removals {
		if err := opts.Remove(rm.Name, rm.When); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// Validate reports declaration errors of r.
func (r *Recipe) Validate() error {
	var errs []error
	if r.Name == "" {
		errs = append(errs, errors.New("recipe has no name"))
	}
	if r.Version == "" {
		errs = append(errs, fmt.Errorf("recipe %s has no version", r.Name))
	}
	if _, err := r.NewOptions(); err != nil {
		errs = append(errs, err)
	}
	for _, rule := range r.Rules {
		if rule.Pattern == "" {
			errs = append(errs, fmt.Errorf("packaging rule %s has no pattern", rule))
		}
	}
	return errors.Join(errs...)
}

// Variables returns the build-tool variables of opts: every active option
// under its mapped name (or its own name), then the fixed defines.
func (r *Recipe) Variables(opts OptionSet) []buildsys.Variable {
	vars := make([]buildsys.Variable, 0, opts.Len()+len(r.Defines))
	for _, o := range opts.All() {
		name := o.Name
		if mapped, ok := r.ToolVars[o.Name]; ok && mapped != "" {
			name = mapped
		}
		vars = append(vars, buildsys.Variable{Name: name, Value: o.Value, Bool: o.Domain.IsBool()})
	}
	for _, d := range r.Defines {
		vars = append(vars, buildsys.Variable{Name: d.Name, Value: d.Value, Bool: d.Bool})
	}
	return vars
}

// Clone returns a deep copy of r.
func (r *Recipe) Clone() *Recipe {
	c := *r
	c.Topics = slices.Clone(r.Topics)
	c.ExportsSources = slices.Clone(r.ExportsSources)
	c.Options = slices.Clone(r.Options)
	c.Removals = slices.Clone(r.Removals)
	c.Requires = *r.Requires.Clone()
	if r.ToolVars != nil {
		c.ToolVars = make(map[string]string, len(r.ToolVars))
		for k, v := range r.ToolVars {
			c.ToolVars[k] = v
		}
	}
	c.Defines = slices.Clone(r.Defines)
	c.Rules = slices.Clone(r.Rules)
	c.Libs = slices.Clone(r.Libs)
	c.SystemLibs = slices.Clone(r.SystemLibs)
	c.LinkFlags = slices.Clone(r.LinkFlags)
	return &c
}
