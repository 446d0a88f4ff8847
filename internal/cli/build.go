package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/upmreg/internal/logger"
	"github.com/glorpus-work/upmreg/pkg/config"
	"github.com/glorpus-work/upmreg/pkg/orchestrator"
)

// buildFlags are the build command flags; unset flags keep the config value.
type buildFlags struct {
	packagesDir string
	outputDir   string
	baseURL     string
	scratchDir  string
	remote      bool
	jobs        int
	vars        map[string]string
}

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the static registry",
		Long: `Scan the major-version directories of the packages directory, read the
package.json of every .tgz archive and write the registry documents, the
archive copies and index.html to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.packagesDir, "packages", "", "Directory holding one subdirectory per major version (defaults to config)")
	cmd.Flags().StringVar(&flags.outputDir, "output", "", "Directory the registry is written to (defaults to config)")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Public URL the registry is served from (defaults to config)")
	cmd.Flags().StringVar(&flags.scratchDir, "scratch", "", "Directory archives are unpacked in (defaults to the system temp dir)")
	cmd.Flags().BoolVar(&flags.remote, "remote", false, "Hash the published tarballs instead of the local archives")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "Number of archives read in parallel (defaults to config)")
	cmd.Flags().StringToStringVar(&flags.vars, "var", nil, "Extra hook variables in the form key=value")

	return cmd
}

// applyBuildFlags overrides config values with the flags the user set.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config, flags buildFlags) error {
	changed := cmd.Flags().Changed
	if changed("packages") {
		cfg.Build.PackagesDir = flags.packagesDir
	}
	if changed("output") {
		cfg.Build.OutputDir = flags.outputDir
	}
	if changed("base-url") {
		cfg.Registry.BaseURL = flags.baseURL
	}
	if changed("scratch") {
		cfg.Build.ScratchDir = flags.scratchDir
	}
	if changed("remote") {
		cfg.Build.Remote = flags.remote
	}
	if changed("jobs") {
		cfg.Build.Jobs = flags.jobs
	}
	return cfg.Validate()
}

func runBuild(cmd *cobra.Command, flags buildFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyBuildFlags(cmd, cfg, flags); err != nil {
		return fmt.Errorf("invalid build options: %w", err)
	}

	orch, cleanup, err := newBuildOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Building registry", logger.Fields{
		"packages": cfg.Build.PackagesDir,
		"output":   cfg.Build.OutputDir,
		"base_url": cfg.Registry.BaseURL,
		"remote":   cfg.Build.Remote,
		"jobs":     cfg.Build.Jobs,
	})

	vars := make(map[string]interface{}, len(flags.vars))
	for k, v := range flags.vars {
		vars[k] = v
	}

	summary, err := orch.Build(cmd.Context(), orchestrator.BuildOptions{
		PackagesDir: cfg.Build.PackagesDir,
		OutputDir:   cfg.Build.OutputDir,
		BaseURL:     cfg.Registry.BaseURL,
		Vars:        vars,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Built %d packages (%d versions) from %d archives in %d major versions, %d skipped\n",
		summary.Packages, summary.Versions, summary.Archives-summary.Skipped, len(summary.Majors), summary.Skipped)
	return nil
}
