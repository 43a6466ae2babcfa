package internal

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/goplus/recipe/internal/metrics"
	"github.com/goplus/recipe/internal/pipeline"
	"github.com/goplus/recipe/internal/vcs"
	"github.com/goplus/recipe/internal/workspace"
	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

var (
	buildFlags   configureFlags
	buildSource  string
	buildGit     string
	buildRef     string
	buildInstall string
	buildForce   bool
)

var buildCmd = &cobra.Command{
	Use:   "build <recipe>",
	Short: "Build a recipe and install the package",
	Long: `Build resolves the recipe options and dependencies, runs the build tool
on the source tree and installs the package into the workspace (or the
directory given with -i). <recipe> is a built-in recipe name, a
*_recipe.gox file or a directory holding one.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	flags := buildCmd.Flags()
	buildFlags.register(flags)
	flags.StringVarP(&buildSource, "source", "s", ".", "source tree")
	flags.StringVar(&buildGit, "git", "", "fetch the source tree from this git remote")
	flags.StringVar(&buildRef, "ref", "", "git ref to fetch (default: tag of the recipe version)")
	flags.StringVarP(&buildInstall, "install", "i", "", "install root (default: in the workspace)")
	flags.BoolVar(&buildForce, "force", false, "rebuild even when the package is cached")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := loadRecipe(args[0], buildFlags.name)
	if err != nil {
		return err
	}

	sourceDir := buildSource
	if buildGit != "" {
		if sourceDir, err = fetchSource(ctx, r, buildGit, buildRef); err != nil {
			return err
		}
	}
	req, err := buildFlags.request(r, sourceDir)
	if err != nil {
		return err
	}

	m := metrics.New()
	defer writeMetrics(m)

	p, err := newPipeline(r.Tool, m)
	if err != nil {
		return err
	}
	plan, err := p.Configure(ctx, req)
	if err != nil {
		m.Run(pipeline.ErrorKind(err))
		return err
	}

	ws := workspace.New(cfg.Workspace)
	pkgID := plan.Config.PackageID()
	installRoot := buildInstall
	if installRoot == "" {
		if installRoot, err = ws.InstallDir(r.Name, r.Version, pkgID); err != nil {
			return err
		}
		if !buildForce {
			entry, ok, err := ws.Lookup(r.Name, r.Version, pkgID)
			if err != nil {
				return err
			}
			if ok {
				logger.Info("up to date", "recipe", r.Name, "version", r.Version, "install_root", installRoot)
				m.Run("cached")
				printResult(cmd.OutOrStdout(), installRoot, pkgID, entry.Metadata)
				return nil
			}
		}
	}

	res, err := p.Execute(ctx, plan, installRoot)
	if err != nil {
		m.Run(pipeline.ErrorKind(err))
		return err
	}
	m.Run("success")

	if buildInstall == "" {
		entry := &workspace.Entry{
			ID:        pkgID,
			Metadata:  res.Metadata,
			Options:   optionMap(res.Config.Options()),
			BuildTime: time.Now(),
		}
		if err := ws.Record(r.Name, r.Version, entry); err != nil {
			return fmt.Errorf("failed to record build: %w", err)
		}
	}
	printResult(cmd.OutOrStdout(), res.InstallRoot, pkgID, res.Metadata)
	return nil
}

// fetchSource checks the source tree of r out of remote into the
// workspace. An empty ref selects the tag of the recipe version.
func fetchSource(ctx context.Context, r *recipe.Recipe, remote, ref string) (string, error) {
	escaped, err := module.EscapePath(r.Name)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(cfg.Workspace, "sources", module.Version{Name: escaped, Version: r.Version}.String())
	git := vcs.New(vcs.WithLogger(logger))
	src := vcs.Source{Remote: remote, Ref: ref}
	if ref == "" {
		if src, err = git.Resolve(ctx, remote, r.Version); err != nil {
			return "", fmt.Errorf("failed to resolve ref of %s: %w", remote, err)
		}
	}
	logger.Info("fetching sources", "recipe", r.Name, "source", src.String())
	if src, err = git.Fetch(ctx, src, dir); err != nil {
		return "", fmt.Errorf("failed to fetch sources: %w", err)
	}
	logger.Debug("sources ready", "dir", dir, "commit", src.Commit)
	return dir, nil
}

func optionMap(set recipe.OptionSet) map[string]string {
	values := make(map[string]string, set.Len())
	for _, o := range set.All() {
		values[o.Name] = o.Value
	}
	return values
}

func writeMetrics(m *metrics.Metrics) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("failed to write metrics", "path", cfg.MetricsFile, "err", err)
	}
}

func printResult(w io.Writer, installRoot, pkgID string, md recipe.ConsumerMetadata) {
	fmt.Fprintf(w, "install root: %s\n", installRoot)
	fmt.Fprintf(w, "package id:   %s\n", pkgID)
	fmt.Fprintf(w, "libs:         %s\n", md.Flags())
	if len(md.Requires) > 0 {
		fmt.Fprintf(w, "requires:     %v\n", md.Requires)
	}
}
