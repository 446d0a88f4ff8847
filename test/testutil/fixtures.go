// Package testutil builds package tarball fixtures for tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/upmreg/pkg/archive"
)

// Package describes a fixture package.json.
type Package struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	DisplayName  string            `json:"displayName,omitempty"`
	Description  string            `json:"description,omitempty"`
	Unity        string            `json:"unity,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// ArchiveName is the conventional tarball name for p.
func (p Package) ArchiveName() string {
	return fmt.Sprintf("%s-%s.tgz", p.Name, p.Version)
}

// WritePackage packs p into dir/<name>-<version>.tgz and returns the path.
// extra files are added next to package.json; use them to vary the tarball bytes.
func WritePackage(t *testing.T, dir string, p Package, extra map[string]string) string {
	t.Helper()

	manifest, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal fixture manifest: %v", err)
	}

	files := map[string]string{"package.json": string(manifest)}
	for name, content := range extra {
		files[name] = content
	}
	return WriteArchive(t, filepath.Join(dir, p.ArchiveName()), archive.PackagePrefix, files)
}

// WriteArchive packs files below prefix into a tarball at path.
func WriteArchive(t *testing.T, path, prefix string, files map[string]string) string {
	t.Helper()

	src := t.TempDir()
	for name, content := range files {
		full := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("failed to create fixture directory: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write fixture file: %v", err)
		}
	}

	if err := archive.NewManager().Pack(context.Background(), src, prefix, path); err != nil {
		t.Fatalf("failed to pack fixture %s: %v", path, err)
	}
	return path
}

// Bucket creates root/<major> and returns its path.
func Bucket(t *testing.T, root string, major int) string {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprint(major))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}
	return dir
}

// ReadDirNames lists the names in dir, failing the test on error.
func ReadDirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
