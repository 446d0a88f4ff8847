// Package archive extracts package tarballs and packs package directories
// into npm-layout tarballs.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/glorpus-work/upmreg/pkg/fsutil"
	"github.com/mholt/archives"
)

// PackagePrefix is the directory npm places package contents under inside a tarball.
const PackagePrefix = "package"

// Manager handles archive extraction and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// ExtractAll extracts all files from an archive to the specified destination directory.
// Files that are not a recognised archive format fail with errutils.ErrExtractFailed.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	if err := am.identify(ctx, archivePath); err != nil {
		return err
	}

	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w: %w", errutils.ErrExtractFailed, err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := os.MkdirAll(destDir, fsutil.DirModePrivate); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %w", errutils.ErrExtractFailed, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return am.extractEntry(fsys, path, destDir, d)
	}

	return fs.WalkDir(fsys, ".", walkFn)
}

// Pack creates a gzip-compressed tarball at archivePath holding the contents
// of sourceDir below prefix (use PackagePrefix for npm tarballs).
func (am *Manager) Pack(ctx context.Context, sourceDir, prefix, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	// A trailing separator adds the directory's contents at the archive root.
	key := absolutePath + string(os.PathSeparator)
	if prefix != "" {
		key = absolutePath
	}
	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		key: prefix,
	})
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	if err := fsutil.EnsureFileDir(archivePath); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}

	if err := format.Archive(ctx, file, archiveFiles); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	return nil
}

// identify rejects files whose content is not an extractable archive.
func (am *Manager) identify(ctx context.Context, archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w: %w", errutils.ErrExtractFailed, err)
	}
	defer func() { _ = f.Close() }()

	format, _, err := archives.Identify(ctx, filepath.Base(archivePath), f)
	if err != nil {
		return fmt.Errorf("unrecognised archive %s: %w: %w", filepath.Base(archivePath), errutils.ErrExtractFailed, err)
	}
	if _, ok := format.(archives.Extractor); !ok {
		return fmt.Errorf("%s is not an archive: %w", filepath.Base(archivePath), errutils.ErrExtractFailed)
	}
	return nil
}

// extractEntry processes a single archive entry and writes it to destDir.
func (am *Manager) extractEntry(fsys fs.FS, path, destDir string, d fs.DirEntry) error {
	if path == "." {
		return nil
	}

	targetPath := filepath.Join(destDir, filepath.FromSlash(path))

	if d.IsDir() {
		return os.MkdirAll(targetPath, fsutil.DirModePrivate)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("failed to get file info for %s: %w", path, err)
	}

	// Links and devices carry nothing the registry reads.
	if !info.Mode().IsRegular() {
		return nil
	}

	return am.writeRegularFile(fsys, path, targetPath)
}

// writeRegularFile writes a regular file from the archive entry to targetPath.
func (am *Manager) writeRegularFile(fsys fs.FS, path, targetPath string) error {
	srcFile, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModePrivate); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	dstFile, err := fsutil.CreateFilePerm(targetPath, fsutil.FileModeSecure)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", targetPath, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file %s: %w: %w", path, errutils.ErrExtractFailed, err)
	}
	return nil
}
