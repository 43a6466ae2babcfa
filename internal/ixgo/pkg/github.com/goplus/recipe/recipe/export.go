// export by github.com/goplus/ixgo/cmd/qexp

package recipe

import (
	q "github.com/goplus/recipe/recipe"

	"go/constant"
	"reflect"

	"github.com/goplus/ixgo"
)

func init() {
	ixgo.RegisterPackage(&ixgo.Package{
		Name: "recipe",
		Path: "github.com/goplus/recipe/recipe",
		Deps: map[string]string{
			"context":                                "context",
			"crypto/sha256":                          "sha256",
			"encoding/hex":                           "hex",
			"errors":                                 "errors",
			"fmt":                                    "fmt",
			"github.com/goplus/recipe/pkgs/buildsys": "buildsys",
			"github.com/qiniu/x/gsh":                 "gsh",
			"runtime":                                "runtime",
			"slices":                                 "slices",
			"strconv":                                "strconv",
			"strings":                                "strings",
		},
		Interfaces: map[string]reflect.Type{
			"Resolver": reflect.TypeOf((*q.Resolver)(nil)).Elem(),
		},
		NamedTypes: map[string]reflect.Type{
			"ArtifactSet":               reflect.TypeOf((*q.ArtifactSet)(nil)).Elem(),
			"Assignment":                reflect.TypeOf((*q.Assignment)(nil)).Elem(),
			"BuildFailedError":          reflect.TypeOf((*q.BuildFailedError)(nil)).Elem(),
			"Condition":                 reflect.TypeOf((*q.Condition)(nil)).Elem(),
			"ConsumerMetadata":          reflect.TypeOf((*q.ConsumerMetadata)(nil)).Elem(),
			"Define":                    reflect.TypeOf((*q.Define)(nil)).Elem(),
			"Domain":                    reflect.TypeOf((*q.Domain)(nil)).Elem(),
			"DuplicateOptionError":      reflect.TypeOf((*q.DuplicateOptionError)(nil)).Elem(),
			"FrozenConfigurationError":  reflect.TypeOf((*q.FrozenConfigurationError)(nil)).Elem(),
			"Guard":                     reflect.TypeOf((*q.Guard)(nil)).Elem(),
			"InvalidValueError":         reflect.TypeOf((*q.InvalidValueError)(nil)).Elem(),
			"Option":                    reflect.TypeOf((*q.Option)(nil)).Elem(),
			"OptionDecl":                reflect.TypeOf((*q.OptionDecl)(nil)).Elem(),
			"OptionSet":                 reflect.TypeOf((*q.OptionSet)(nil)).Elem(),
			"Options":                   reflect.TypeOf((*q.Options)(nil)).Elem(),
			"PackagingIOError":          reflect.TypeOf((*q.PackagingIOError)(nil)).Elem(),
			"PackagingRule":             reflect.TypeOf((*q.PackagingRule)(nil)).Elem(),
			"Platform":                  reflect.TypeOf((*q.Platform)(nil)).Elem(),
			"Recipe":                    reflect.TypeOf((*q.Recipe)(nil)).Elem(),
			"RecipeF":                   reflect.TypeOf((*q.RecipeF)(nil)).Elem(),
			"Removal":                   reflect.TypeOf((*q.Removal)(nil)).Elem(),
			"Requirement":               reflect.TypeOf((*q.Requirement)(nil)).Elem(),
			"Requirements":              reflect.TypeOf((*q.Requirements)(nil)).Elem(),
			"ResolvedConfiguration":     reflect.TypeOf((*q.ResolvedConfiguration)(nil)).Elem(),
			"ResolvedPackage":           reflect.TypeOf((*q.ResolvedPackage)(nil)).Elem(),
			"ResolvedRequirement":       reflect.TypeOf((*q.ResolvedRequirement)(nil)).Elem(),
			"Scope":                     reflect.TypeOf((*q.Scope)(nil)).Elem(),
			"UnknownOptionError":        reflect.TypeOf((*q.UnknownOptionError)(nil)).Elem(),
			"UnresolvedDependencyError": reflect.TypeOf((*q.UnresolvedDependencyError)(nil)).Elem(),
		},
		AliasTypes: map[string]reflect.Type{},
		Vars:       map[string]reflect.Value{},
		Funcs: map[string]reflect.Value{
			"ActiveOptions":            reflect.ValueOf(q.ActiveOptions),
			"Always":                   reflect.ValueOf(q.Always),
			"Bool":                     reflect.ValueOf(q.Bool),
			"Gopt_RecipeF_Main":        reflect.ValueOf(q.Gopt_RecipeF_Main),
			"HostPlatform":             reflect.ValueOf(q.HostPlatform),
			"NewOptionSet":             reflect.ValueOf(q.NewOptionSet),
			"NewOptions":               reflect.ValueOf(q.NewOptions),
			"NewResolvedConfiguration": reflect.ValueOf(q.NewResolvedConfiguration),
			"OnOS":                     reflect.ValueOf(q.OnOS),
			"OnWindows":                reflect.ValueOf(q.OnWindows),
			"OneOf":                    reflect.ValueOf(q.OneOf),
			"ParseAssignment":          reflect.ValueOf(q.ParseAssignment),
			"Publish":                  reflect.ValueOf(q.Publish),
			"ResolveAll":               reflect.ValueOf(q.ResolveAll),
			"WhenOption":               reflect.ValueOf(q.WhenOption),
		},
		TypedConsts: map[string]ixgo.TypedConst{
			"ScopeBuild":   {Typ: reflect.TypeOf(q.ScopeBuild), Value: constant.MakeInt64(int64(q.ScopeBuild))},
			"ScopeRuntime": {Typ: reflect.TypeOf(q.ScopeRuntime), Value: constant.MakeInt64(int64(q.ScopeRuntime))},
		},
		UntypedConsts: map[string]ixgo.UntypedConst{
			"GopPackage": {Typ: "untyped bool", Value: constant.MakeBool(bool(q.GopPackage))},
		},
	})
}
