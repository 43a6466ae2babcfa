// Package ixgo registers the recipe classfile project and the packages
// recipe files may import with the ixgo interpreter.
package ixgo

import (
	"github.com/goplus/ixgo/xgobuild"
	"github.com/goplus/mod/modfile"

	_ "github.com/goplus/recipe/internal/ixgo/pkg/github.com/goplus/recipe/recipe"
	_ "github.com/goplus/recipe/internal/ixgo/pkg/github.com/qiniu/x/gsh"
)

func init() {
	xgobuild.RegisterProject(&modfile.Project{
		Ext:   "_recipe.gox",
		Class: "RecipeF",
		PkgPaths: []string{
			"github.com/goplus/recipe/recipe",
		},
	})
}
