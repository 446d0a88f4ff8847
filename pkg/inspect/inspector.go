//go:generate mockgen -destination=./mocks/inspect.go . Extractor

// Package inspect reads the manifest out of a package tarball. Each archive is
// extracted into its own scratch directory, which is removed before Inspect
// returns whatever the outcome.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/glorpus-work/upmreg/pkg/fsutil"
	"github.com/glorpus-work/upmreg/pkg/manifest"
)

// Extractor unpacks an archive into a directory.
type Extractor interface {
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}

// Inspector extracts archives below ScratchRoot and parses their manifests.
type Inspector struct {
	Extractor   Extractor
	ScratchRoot string
}

// NewInspector creates an Inspector. scratchRoot must exist.
func NewInspector(extractor Extractor, scratchRoot string) *Inspector {
	return &Inspector{
		Extractor:   extractor,
		ScratchRoot: scratchRoot,
	}
}

// Inspect returns the manifest of the archive at archivePath.
func (i *Inspector) Inspect(ctx context.Context, archivePath string) (m *manifest.PackageManifest, err error) {
	scratch, err := os.MkdirTemp(i.ScratchRoot, scratchPattern(archivePath))
	if err != nil {
		return nil, errutils.Wrapf(err, "failed to create scratch directory for %s", filepath.Base(archivePath))
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil && err == nil {
			err = errutils.Wrapf(rmErr, "failed to remove scratch directory %s", scratch)
			m = nil
		}
	}()

	if err := i.Extractor.ExtractAll(ctx, archivePath, scratch); err != nil {
		if errors.Is(err, errutils.ErrExtractFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errutils.ErrExtractFailed, err)
	}

	manifestPath := filepath.Join(scratch, filepath.FromSlash(manifest.RelativePath))
	f, err := os.Open(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", manifest.RelativePath, errutils.ErrManifestNotFound)
		}
		return nil, errutils.Wrapf(err, "failed to open %s", manifest.RelativePath)
	}
	defer func() { _ = f.Close() }()

	return manifest.ParseReader(f)
}

// scratchPattern derives the scratch directory name from the archive file
// name; os.MkdirTemp appends a random suffix so concurrent inspections of
// identically named archives never share a directory.
func scratchPattern(archivePath string) string {
	base := filepath.Base(archivePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, string(os.PathSeparator), "_")
	return base + "-*"
}

// NewScratchRoot creates the parent of all scratch directories for one build.
// An empty dir uses the system temp directory.
func NewScratchRoot(dir string) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, fsutil.DirModePrivate); err != nil {
			return "", errutils.Wrapf(err, "failed to create scratch root %s", dir)
		}
	}
	root, err := os.MkdirTemp(dir, "upmreg-scratch-*")
	if err != nil {
		return "", errutils.Wrap(err, "failed to create scratch root")
	}
	return root, nil
}
