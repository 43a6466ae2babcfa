// Package loader evaluates recipe classfiles (<Name>_recipe.gox) with the
// ixgo interpreter and returns the recipes they declare.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/goplus/ixgo"
	"github.com/goplus/ixgo/xgobuild"
	"github.com/goplus/recipe/recipe"
	"github.com/goplus/xgo/ast"
	"github.com/goplus/xgo/parser"
	"github.com/goplus/xgo/token"

	// make ixgo happy
	_ "github.com/goplus/recipe/internal/ixgo"
)

// Ext is the file name suffix of recipe classfiles.
const Ext = "_recipe.gox"

// Loader loads recipe classfiles.
type Loader struct {
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithOutput redirects the output of shell commands run by recipe files.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(l *Loader) {
		l.stdout, l.stderr = stdout, stderr
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	return l
}

// Load evaluates the recipe file at path.
func (l *Loader) Load(path string) (*recipe.Recipe, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.load(path, content)
}

func (l *Loader) load(path string, content []byte) (*recipe.Recipe, error) {
	structName, ok := strings.CutSuffix(filepath.Base(path), Ext)
	if !ok || structName == "" {
		return nil, fmt.Errorf("failed to load recipe: file name is not valid: %s", path)
	}
	l.logger.Debug("loading recipe", "path", path)

	ctx := ixgo.NewContext(0)
	source, err := xgobuild.BuildFile(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe %s: %w", path, err)
	}
	pkgs, err := ctx.LoadFile("main.go", source)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe %s: %w", path, err)
	}
	interp, err := ctx.NewInterp(pkgs)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe %s: %w", path, err)
	}
	defer interp.ResetIcall()
	if err = interp.RunInit(); err != nil {
		return nil, fmt.Errorf("failed to load recipe %s: %w", path, err)
	}

	typ, ok := interp.GetType(structName)
	if !ok {
		return nil, fmt.Errorf("failed to load recipe: struct name not found: %s", structName)
	}
	val := reflect.New(typ)
	class := val.Elem()
	if l.stdout != nil {
		setValue(class, "fout", l.stdout)
	}
	if l.stderr != nil {
		setValue(class, "ferr", l.stderr)
	}

	val.Interface().(interface{ Main() }).Main()

	rf, err := recipeOf(class)
	if err != nil {
		return nil, err
	}
	r, err := rf.Recipe()
	if err != nil {
		return nil, fmt.Errorf("invalid recipe %s: %w", path, err)
	}
	l.logger.Debug("loaded recipe", "ref", r.Ref(), "options", len(r.Options), "requires", r.Requires.Len())
	return r, nil
}

// recipeOf returns the RecipeF embedded in a loaded class.
func recipeOf(class reflect.Value) (*recipe.RecipeF, error) {
	field := class.FieldByName("RecipeF")
	if !field.IsValid() {
		return nil, fmt.Errorf("failed to load recipe: %s does not embed recipe.RecipeF", class.Type())
	}
	if field.Kind() == reflect.Ptr {
		rf, ok := field.Interface().(*recipe.RecipeF)
		if !ok || rf == nil {
			return nil, fmt.Errorf("failed to load recipe: unexpected class field %s", field.Type())
		}
		return rf, nil
	}
	rf, ok := field.Addr().Interface().(*recipe.RecipeF)
	if !ok {
		return nil, fmt.Errorf("failed to load recipe: unexpected class field %s", field.Type())
	}
	return rf, nil
}

// -----------------------------------------------------------------------------

// NameOf returns the package name a recipe file declares, read from its
// syntax tree without evaluating it.
func NameOf(path string) (string, error) {
	fset := token.NewFileSet()
	astFile, err := parser.ParseEntry(fset, path, nil, parser.Config{
		ClassKind: xgobuild.ClassKind,
	})
	if err != nil {
		return "", err
	}
	name, err := callArgOf(astFile, "name")
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("failed to parse name from %s: no name declared", path)
	}
	return name, nil
}

// callArgOf returns the string argument of the first call to fnName in f.
func callArgOf(f *ast.File, fnName string) (arg string, err error) {
	ast.Inspect(f, func(n ast.Node) bool {
		c, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		fn, ok := c.Fun.(*ast.Ident)
		if !ok || fn.Name != fnName {
			return true
		}
		arg, err = parseCallArg(c, fnName)
		return false
	})
	return
}

// parseCallArg extracts the first string argument from a call expression.
func parseCallArg(c *ast.CallExpr, fnName string) (string, error) {
	if len(c.Args) == 0 {
		return "", fmt.Errorf("failed to parse %s from AST: no argument", fnName)
	}
	lit, ok := c.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", fmt.Errorf("failed to parse %s from AST: argument is not a string literal", fnName)
	}
	v := strings.Trim(strings.Trim(lit.Value, `"`), "`")
	if v == "" {
		return "", fmt.Errorf("failed to parse %s from AST: no argument", fnName)
	}
	return v, nil
}
