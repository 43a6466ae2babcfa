// Package config handles the CLI configuration using Viper.
//
// Values are layered: built-in defaults, then the config file, then
// RECIPE_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goplus/recipe/internal/env"
)

const (
	// ConfigFileName is the base name of the config file.
	ConfigFileName = "recipe"
	// ConfigFileExt is the extension of the config file.
	ConfigFileExt = "yaml"

	envPrefix = "RECIPE"
)

// Config is the resolved CLI configuration.
type Config struct {
	Workspace    string   `mapstructure:"workspace"`
	Registry     []string `mapstructure:"registry"`
	Tool         string   `mapstructure:"tool"`
	Verbose      bool     `mapstructure:"verbose"`
	MetricsFile  string   `mapstructure:"metrics_file"`
	KeepBuildDir bool     `mapstructure:"keep_build_dir"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"workspace":      "workspace",
	"registry":       "registry",
	"tool":           "tool",
	"verbose":        "verbose",
	"metrics-file":   "metrics_file",
	"keep-build-dir": "keep_build_dir",
}

// LoadOptions selects where configuration comes from.
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist.
	ConfigFile string
	// ConfigDir overrides the directory searched for recipe.yaml.
	ConfigDir string
	// Flags are bound on top of the other layers.
	Flags *pflag.FlagSet
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() (*Config, error) {
	ws, err := env.WorkDir()
	if err != nil {
		return nil, err
	}
	reg, err := env.RegistryDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Workspace: ws,
		Registry:  []string{reg},
		Tool:      "cmake",
	}, nil
}

// Load resolves the configuration. It returns the config file used, empty
// when none was found.
func Load(opts LoadOptions) (*Config, string, error) {
	defaults, err := DefaultConfig()
	if err != nil {
		return nil, "", err
	}

	v := viper.New()
	v.SetDefault("workspace", defaults.Workspace)
	v.SetDefault("registry", defaults.Registry)
	v.SetDefault("tool", defaults.Tool)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("metrics_file", defaults.MetricsFile)
	v.SetDefault("keep_build_dir", defaults.KeepBuildDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		resolvedPath = opts.ConfigFile
	} else {
		dir := opts.ConfigDir
		if dir == "" {
			if dir, err = env.ConfigDir(); err != nil {
				return nil, "", err
			}
		}
		path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(path) {
			resolvedPath = path
		}
	}
	if resolvedPath != "" {
		v.SetConfigFile(resolvedPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("read config %s: %w", resolvedPath, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// Validate reports invalid values.
func (c *Config) Validate() error {
	var errs []error
	if c.Workspace == "" {
		errs = append(errs, errors.New("workspace must not be empty"))
	}
	switch c.Tool {
	case "cmake", "autotools":
	default:
		errs = append(errs, fmt.Errorf("unknown build tool %q", c.Tool))
	}
	return errors.Join(errs...)
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
