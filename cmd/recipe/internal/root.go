package internal

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/goplus/recipe/internal/config"

	// built-in recipes
	_ "github.com/goplus/recipe/recipes/clickhousecpp"
)

var (
	configFile string

	cfg    *config.Config
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "recipe"})
)

var rootCmd = &cobra.Command{
	Use:   "recipe",
	Short: "recipe builds and repackages C/C++ libraries",
	Long: `recipe evaluates package recipes: it resolves options and dependencies,
drives the build tool and installs the results in a consumer layout.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentPreRunE = loadConfig
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default <UserConfigDir>/recipe/recipe.yaml)")
	flags.String("workspace", "", "workspace directory")
	flags.StringSlice("registry", nil, "dependency registry root (repeatable)")
	flags.String("tool", "", "build tool: cmake or autotools")
	flags.BoolP("verbose", "v", false, "enable verbose output")
	flags.String("metrics-file", "", "write Prometheus metrics to this file")
	flags.Bool("keep-build-dir", false, "keep the build directory")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, path, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		Flags:      rootCmd.PersistentFlags(),
	})
	if err != nil {
		return err
	}
	cfg = c
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	if path != "" {
		logger.Debug("using config", "path", path)
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Fatal(err)
	}
}
