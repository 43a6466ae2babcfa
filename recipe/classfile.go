package recipe

import (
	"github.com/qiniu/x/gsh"
)

const GopPackage = true

// -----------------------------------------------------------------------------

// RecipeF is the class of recipe files (<Name>_recipe.gox). Built-in
// recipes written in Go use it directly.
type RecipeF struct {
	gsh.App

	decl Recipe
}

func (p *RecipeF) app() *gsh.App {
	return &p.App
}

// Name sets the package name.
func (p *RecipeF) Name(name string) { p.decl.Name = name }

// Version sets the package version.
func (p *RecipeF) Version(ver string) { p.decl.Version = ver }

func (p *RecipeF) Description(s string) { p.decl.Description = s }
func (p *RecipeF) License(s string)     { p.decl.License = s }
func (p *RecipeF) Homepage(s string)    { p.decl.Homepage = s }

func (p *RecipeF) Topics(topics ...string) {
	p.decl.Topics = append(p.decl.Topics, topics...)
}

// Tool selects the build tool, "cmake" or "autotools".
func (p *RecipeF) Tool(name string) { p.decl.Tool = name }

// ExportsSources adds globs selecting the source files the build needs.
func (p *RecipeF) ExportsSources(patterns ...string) {
	p.decl.ExportsSources = append(p.decl.ExportsSources, patterns...)
}

// SourceFolder sets the configuration root, relative to the build dir.
func (p *RecipeF) SourceFolder(dir string) { p.decl.SourceFolder = dir }

// -----------------------------------------------------------------------------

// BoolOption declares a boolean option.
func (p *RecipeF) BoolOption(name string, def bool) {
	v := "false"
	if def {
		v = "true"
	}
	p.decl.Options = append(p.decl.Options, OptionDecl{Name: name, Domain: Bool(), Default: v})
}

// Option declares an option taking one of values.
func (p *RecipeF) Option(name string, values []string, def string) {
	p.decl.Options = append(p.decl.Options, OptionDecl{Name: name, Domain: OneOf(values...), Default: def})
}

// RemoveOptionOn removes an option on the given operating systems.
// "windows" stands for every Windows-like OS.
func (p *RecipeF) RemoveOptionOn(name string, oses ...string) {
	p.RemoveOptionWhen(name, OnOS(oses...))
}

// RemoveOptionWhen removes an option on platforms where cond holds.
func (p *RecipeF) RemoveOptionWhen(name string, cond Condition) {
	p.decl.Removals = append(p.decl.Removals, Removal{Name: name, When: cond})
}

// -----------------------------------------------------------------------------

// Requires declares a runtime requirement.
func (p *RecipeF) Requires(name, constraint string) {
	p.decl.Requires.Add(name, constraint, false)
}

// RequiresTransitive declares a runtime requirement whose headers are
// visible to consumers of this package.
func (p *RecipeF) RequiresTransitive(name, constraint string) {
	p.decl.Requires.Add(name, constraint, true)
}

// RequiresIf declares a runtime requirement that applies when the boolean
// option is true.
func (p *RecipeF) RequiresIf(option, name, constraint string) {
	p.decl.Requires.AddIf(WhenOption(option), name, constraint, false)
}

// BuildRequires declares a build-only requirement.
func (p *RecipeF) BuildRequires(name, constraint string) {
	p.decl.Requires.AddBuild(name, constraint, "")
}

// BuildRequiresIf declares a build-only requirement that applies when the
// boolean option is true.
func (p *RecipeF) BuildRequiresIf(option, name, constraint string) {
	p.decl.Requires.AddBuild(name, constraint, option)
}

// -----------------------------------------------------------------------------

// ToolVar passes option to the build tool as variable.
func (p *RecipeF) ToolVar(option, variable string) {
	if p.decl.ToolVars == nil {
		p.decl.ToolVars = make(map[string]string)
	}
	p.decl.ToolVars[option] = variable
}

// Define passes a fixed string variable to the build tool.
func (p *RecipeF) Define(name, value string) {
	p.decl.Defines = append(p.decl.Defines, Define{Name: name, Value: value})
}

// DefineBool passes a fixed boolean variable to the build tool.
func (p *RecipeF) DefineBool(name string, value bool) {
	v := "false"
	if value {
		v = "true"
	}
	p.decl.Defines = append(p.decl.Defines, Define{Name: name, Value: v, Bool: true})
}

// Pack copies files matching pattern under src to dst, flattened.
func (p *RecipeF) Pack(pattern, src, dst string) {
	p.decl.Rules = append(p.decl.Rules, PackagingRule{Pattern: pattern, Src: src, Dst: dst, Flatten: true})
}

// PackKeepPath copies files matching pattern under src to dst, keeping
// their path relative to src.
func (p *RecipeF) PackKeepPath(pattern, src, dst string) {
	p.decl.Rules = append(p.decl.Rules, PackagingRule{Pattern: pattern, Src: src, Dst: dst})
}

// Libs sets the library names consumers link against.
func (p *RecipeF) Libs(names ...string) {
	p.decl.Libs = append(p.decl.Libs, names...)
}

func (p *RecipeF) SystemLibs(names ...string) {
	p.decl.SystemLibs = append(p.decl.SystemLibs, names...)
}

func (p *RecipeF) LinkFlags(flags ...string) {
	p.decl.LinkFlags = append(p.decl.LinkFlags, flags...)
}

// Recipe returns a validated copy of the declared recipe.
func (p *RecipeF) Recipe() (*Recipe, error) {
	r := p.decl.Clone()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// -----------------------------------------------------------------------------

// Gopt_RecipeF_Main is main entry of this classfile.
func Gopt_RecipeF_Main(this interface {
	app() *gsh.App
	MainEntry()
}) {
	this.MainEntry()
	gsh.InitApp(this.app())
}
