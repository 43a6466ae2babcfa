// Package clickhousecpp provides the recipe of the clickhouse-cpp client
// library, registered under the name "clickhouse-cpp".
package clickhousecpp

import (
	"github.com/goplus/recipe/recipe"
	"github.com/goplus/recipe/recipes"
)

// Name is the registered package name.
const Name = "clickhouse-cpp"

func init() {
	recipes.Register(Name, New)
}

// Headers installed individually from the top of the source folder.
var topHeaders = []string{
	"block.h",
	"client.h",
	"exceptions.h",
	"error_codes.h",
	"protocol.h",
	"query.h",
	"server_exception.h",
}

// New returns the clickhouse-cpp recipe.
func New() *recipe.Recipe {
	var f recipe.RecipeF
	f.Name(Name)
	f.Version("2.5.0")
	f.Description("ClickHouse C++ API")
	f.License("Apache-2.0")
	f.Homepage("https://github.com/ClickHouse/clickhouse-cpp")
	f.Topics("database", "db", "clickhouse")

	f.Tool("cmake")
	f.ExportsSources("clickhouse/*")
	f.SourceFolder("clickhouse")

	f.BoolOption("shared", false)
	f.BoolOption("fPIC", true)
	f.BoolOption("enable_benchmark", false)
	f.BoolOption("with_openssl", false)
	f.RemoveOptionOn("fPIC", "windows")

	f.Requires("lz4", "1.9.4")
	f.RequiresTransitive("abseil", "20230125.3")
	f.Requires("cityhash", "cci.20130801")
	f.RequiresIf("with_openssl", "openssl", ">=1.1,<4")
	f.BuildRequiresIf("enable_benchmark", "benchmark", "1.8.0")

	f.ToolVar("shared", "BUILD_SHARED_LIBS")
	f.ToolVar("fPIC", "CMAKE_POSITION_INDEPENDENT_CODE")
	f.ToolVar("enable_benchmark", "BUILD_BENCHMARK")
	f.ToolVar("with_openssl", "WITH_OPENSSL")
	f.DefineBool("WITH_SYSTEM_ABSEIL", true)
	f.DefineBool("WITH_SYSTEM_LZ4", true)
	f.DefineBool("WITH_SYSTEM_CITYHASH", true)

	for _, dir := range []string{"base", "columns", "types"} {
		f.Pack("*.h", "clickhouse/"+dir, "include/clickhouse/"+dir)
	}
	for _, h := range topHeaders {
		f.Pack(h, "clickhouse", "include/clickhouse")
	}
	f.PackKeepPath("*.hpp", "clickhouse", "include/clickhouse")
	for _, lib := range []string{"*.lib", "*.so", "*.dylib", "*.a"} {
		f.Pack(lib, "", "lib")
	}
	f.Pack("*.dll", "", "bin")

	f.Libs("clickhouse-cpp")

	r, err := f.Recipe()
	if err != nil {
		panic(err)
	}
	return r
}
