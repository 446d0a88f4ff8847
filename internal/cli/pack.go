package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/upmreg/internal/logger"
	"github.com/glorpus-work/upmreg/pkg/archive"
	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/glorpus-work/upmreg/pkg/manifest"
)

type packFlags struct {
	outputDir string
	bucket    bool
	force     bool
}

// NewPackCmd creates the pack command.
func NewPackCmd() *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "pack SOURCE_DIR",
		Short: "Pack a package directory into a tarball",
		Long: `Pack a directory holding a package.json into <name>-<version>.tgz with
the npm package/ prefix, ready to be dropped into a major-version directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := runPack(cmd, args[0], flags)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.outputDir, "output", "o", ".", "Directory the tarball is written to")
	cmd.Flags().BoolVar(&flags.bucket, "bucket", false, "Write into the <major> subdirectory of the output directory")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing tarball")

	return cmd
}

func runPack(cmd *cobra.Command, sourceDir string, flags packFlags) (string, error) {
	initLogging()

	m, err := readSourceManifest(sourceDir)
	if err != nil {
		return "", err
	}
	for _, warning := range m.Lint() {
		logger.Warn(warning, logger.Fields{"package": m.Name})
	}

	outputDir := flags.outputDir
	if flags.bucket {
		outputDir = filepath.Join(outputDir, m.Major())
	}
	archivePath := filepath.Join(outputDir, m.ArchiveName())

	if _, err := os.Stat(archivePath); err == nil && !flags.force {
		return "", fmt.Errorf("%s (use --force to overwrite): %w", archivePath, errutils.ErrAlreadyExists)
	}

	if err := archive.NewManager().Pack(cmd.Context(), sourceDir, archive.PackagePrefix, archivePath); err != nil {
		return "", fmt.Errorf("failed to pack %s: %w", sourceDir, err)
	}

	logger.Success("Package packed", logger.Fields{"package": m.Name, "version": m.Version, "path": archivePath})
	return archivePath, nil
}

func readSourceManifest(sourceDir string) (*manifest.PackageManifest, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errutils.ErrInvalidPath, sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", errutils.ErrInvalidPath, sourceDir)
	}

	f, err := os.Open(filepath.Join(sourceDir, "package.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s has no package.json", errutils.ErrManifestNotFound, sourceDir)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return manifest.ParseReader(f)
}
