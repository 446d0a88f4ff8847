// Package emit writes the static registry tree: per-package documents, the
// all-packages and index documents, archive copies and the HTML listing.
package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/glorpus-work/upmreg/pkg/fsutil"
	"github.com/glorpus-work/upmreg/pkg/manifest"
	"github.com/glorpus-work/upmreg/pkg/registry"
)

const (
	// AllDir holds the npm-style listing endpoint.
	AllDir = "-"
	// IndexFile is the registry summary document.
	IndexFile = "index.json"
	// HTMLFile is the human-readable listing.
	HTMLFile = "index.html"
	// NoJekyllFile disables Jekyll processing on GitHub Pages.
	NoJekyllFile = ".nojekyll"
)

// Site describes the published registry.
type Site struct {
	// Name and Version are recorded in index.json.
	Name    string
	Version string
	// Title heads the HTML page; ScopeName names the scoped registry in the
	// usage snippet.
	Title       string
	Description string
	ScopeName   string
	BaseURL     string
	RepoURL     string
	Scopes      []string
}

// Emitter writes registry artifacts below OutputDir.
type Emitter struct {
	OutputDir string
	Site      Site
}

// NewEmitter creates an Emitter.
func NewEmitter(outputDir string, site Site) *Emitter {
	return &Emitter{OutputDir: outputDir, Site: site}
}

// Prepare creates the output directory and its .nojekyll marker.
func (e *Emitter) Prepare() error {
	if err := fsutil.EnsureDir(e.OutputDir); err != nil {
		return fmt.Errorf("%w: %s: %w", errutils.ErrOutputDirectory, e.OutputDir, err)
	}
	return fsutil.WriteFileAtomic(filepath.Join(e.OutputDir, NoJekyllFile), nil)
}

// WriteRegistry writes every document derived from root: <name> and
// <name>.json per package, index.json, -/all and -/all.json.
func (e *Emitter) WriteRegistry(root *registry.Registry) error {
	if err := e.Prepare(); err != nil {
		return err
	}

	for _, name := range root.Names() {
		if err := manifest.ValidateName(name); err != nil {
			return err
		}
		pkg, _ := root.Package(name)
		data, err := encode(pkg)
		if err != nil {
			return errutils.Wrapf(err, "failed to encode %s", name)
		}
		base := filepath.Join(e.OutputDir, filepath.FromSlash(name))
		for _, path := range []string{base, base + ".json"} {
			if err := e.writeDocument(path, data); err != nil {
				return err
			}
		}
	}

	index, err := encode(BuildIndex(e.Site, root))
	if err != nil {
		return errutils.Wrap(err, "failed to encode index")
	}
	if err := e.writeDocument(filepath.Join(e.OutputDir, IndexFile), index); err != nil {
		return err
	}

	all, err := encode(root)
	if err != nil {
		return errutils.Wrap(err, "failed to encode package listing")
	}
	for _, name := range []string{"all", "all.json"} {
		if err := e.writeDocument(filepath.Join(e.OutputDir, AllDir, name), all); err != nil {
			return err
		}
	}
	return nil
}

// PublishArchives copies the bucket's archives to <out>/<major>/.
func (e *Emitter) PublishArchives(bucket registry.Bucket) ([]string, error) {
	archives, err := bucket.Archives()
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(e.OutputDir, bucket.Major)
	if err := fsutil.EnsureDir(dest); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errutils.ErrOutputDirectory, dest, err)
	}
	for _, name := range archives {
		if err := fsutil.Copy(filepath.Join(bucket.Dir, name), filepath.Join(dest, name)); err != nil {
			return nil, err
		}
	}
	return archives, nil
}

// writeDocument replaces any directory squatting on path before writing.
// path must lie strictly inside OutputDir.
func (e *Emitter) writeDocument(path string, data []byte) error {
	if !e.contains(path) {
		return fmt.Errorf("%w: %s is outside %s", errutils.ErrInvalidPath, path, e.OutputDir)
	}
	if err := fsutil.RemoveIfDir(path); err != nil {
		return errutils.Wrapf(err, "failed to clear %s", path)
	}
	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		return errutils.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func (e *Emitter) contains(path string) bool {
	rel, err := filepath.Rel(filepath.Clean(e.OutputDir), filepath.Clean(path))
	if err != nil || filepath.IsAbs(rel) || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// encode renders v with two-space indentation, without HTML escaping and
// with a trailing newline.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
