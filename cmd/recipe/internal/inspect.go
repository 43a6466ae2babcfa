package internal

import (
	"context"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goplus/recipe/recipe"
)

var inspectFlags configureFlags

var inspectCmd = &cobra.Command{
	Use:   "inspect <recipe>",
	Short: "Show the resolved configuration of a recipe",
	Long: `Inspect resolves the recipe options for the target platform, computes
its requirements and resolves them against the registry. Nothing is built;
the result is printed as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectFlags.register(inspectCmd.Flags())
	rootCmd.AddCommand(inspectCmd)
}

type inspectRequirement struct {
	Name       string `yaml:"name"`
	Constraint string `yaml:"constraint"`
	Scope      string `yaml:"scope"`
	Propagate  bool   `yaml:"propagate,omitempty"`
	Version    string `yaml:"version"`
	Path       string `yaml:"path"`
}

type inspectOutput struct {
	Name         string                  `yaml:"name"`
	Version      string                  `yaml:"version"`
	License      string                  `yaml:"license,omitempty"`
	Tool         string                  `yaml:"tool"`
	Platform     recipe.Platform         `yaml:"platform"`
	PackageID    string                  `yaml:"package_id"`
	Options      map[string]string       `yaml:"options"`
	Requirements []inspectRequirement    `yaml:"requirements"`
	Metadata     recipe.ConsumerMetadata `yaml:"metadata"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := loadRecipe(args[0], inspectFlags.name)
	if err != nil {
		return err
	}
	req, err := inspectFlags.request(r, "")
	if err != nil {
		return err
	}
	p, err := newPipeline(r.Tool, nil)
	if err != nil {
		return err
	}
	plan, err := p.Configure(ctx, req)
	if err != nil {
		return err
	}

	c := plan.Config
	out := inspectOutput{
		Name:      c.Name(),
		Version:   c.Version(),
		License:   r.License,
		Tool:      c.Tool(),
		Platform:  c.Platform(),
		PackageID: c.PackageID(),
		Options:   optionMap(c.Options()),
		Metadata:  recipe.Publish(plan.Recipe, c.Requirements()),
	}
	if out.Tool == "" {
		out.Tool = cfg.Tool
	}
	for _, rr := range c.Requirements() {
		out.Requirements = append(out.Requirements, inspectRequirement{
			Name:       rr.Name,
			Constraint: rr.Constraint,
			Scope:      rr.Scope.String(),
			Propagate:  rr.Propagate,
			Version:    rr.Package.Version,
			Path:       rr.Package.InstallPath,
		})
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}
