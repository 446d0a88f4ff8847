package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/upmreg/internal/logger"
	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/glorpus-work/upmreg/pkg/fsutil"
	"github.com/glorpus-work/upmreg/pkg/hooks"
)

// NewHookCmd creates the hook command with subcommands.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage build hooks",
		Long:  "Scaffold and inspect the Tengo scripts run before and after a build",
	}

	cmd.AddCommand(
		newHookInitCmd(),
		newHookListCmd(),
	)

	return cmd
}

func newHookInitCmd() *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:       "init TYPE",
		Short:     "Write a hook script template",
		Long:      "Write <dir>/<type>.tengo with the variables available to the hook. TYPE is pre-build or post-build.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(hooks.PreBuild), string(hooks.PostBuild)},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := runHookInit(hooks.HookType(args[0]), dir, force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "hooks", "Directory the script is written to")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing script")

	return cmd
}

func newHookListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the hooks a build would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			manager, err := loadHookManager(cfg)
			if err != nil {
				return err
			}
			for _, hookType := range manager.Loaded() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), hookType)
			}
			return nil
		},
	}

	return cmd
}

func runHookInit(hookType hooks.HookType, dir string, force bool) (string, error) {
	initLogging()

	if !hookType.Valid() {
		return "", hooks.ErrUnsupportedHookEvent(string(hookType))
	}

	path := filepath.Join(dir, string(hookType)+hooks.HookFileExtension)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s (use --force to overwrite): %w", path, errutils.ErrAlreadyExists)
	}

	if err := fsutil.EnsureDir(dir); err != nil {
		return "", errutils.Wrapf(err, "failed to create hooks directory %s", dir)
	}
	if err := fsutil.WriteFileAtomic(path, []byte(hooks.HookTemplate(hookType)+"\n")); err != nil {
		return "", errutils.Wrapf(err, "failed to write %s", path)
	}

	logger.Success("Hook template written", logger.Fields{"type": hookType, "path": path})
	return path, nil
}
