// Package manifest models the package.json embedded in every package tarball.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/tidwall/jsonc"
)

const (
	// RelativePath is where the manifest lives inside an extracted tarball.
	RelativePath = "package/package.json"

	// DefaultUnity is the platform compatibility recorded when a manifest has none.
	DefaultUnity = "2020.1"
)

// PackageManifest is the normalized manifest of one package version.
// Values are immutable once Parse returns.
type PackageManifest struct {
	Name    string
	Version string
	// DisplayName is nil when the manifest does not declare one; it is then
	// omitted from registry documents.
	DisplayName *string
	// Description defaults to "".
	Description string
	// Unity is the platform compatibility tag, DefaultUnity when absent.
	Unity string
	// Dependencies maps package names to version ranges; never nil. Values are
	// passed through as declared, so a non-string range survives unchanged
	// (numbers as json.Number).
	Dependencies map[string]any
}

// raw mirrors the fields read from package.json. Every optional field is a
// pointer so absence is distinguishable from an empty value.
type raw struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	DisplayName  *string        `json:"displayName"`
	Description  *string        `json:"description"`
	Unity        *string        `json:"unity"`
	Dependencies map[string]any `json:"dependencies"`
}

// reservedNames are top-level entries of the output directory that a
// package document must not replace.
var reservedNames = map[string]bool{
	"-":          true,
	"index.json": true,
	"index.html": true,
	".nojekyll":  true,
}

// Parse decodes a package.json document. Comments and trailing commas are
// tolerated. A missing version or a missing or unusable name is an
// errutils.ErrManifestInvalid error.
func Parse(data []byte) (*PackageManifest, error) {
	var r raw
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %w", errutils.ErrManifestInvalid, err)
	}
	if err := ValidateName(r.Name); err != nil {
		return nil, err
	}
	if r.Version == "" {
		return nil, fmt.Errorf("%w: %s: missing version", errutils.ErrManifestInvalid, r.Name)
	}
	return normalize(r), nil
}

// ParseReader reads and decodes a package.json document.
func ParseReader(reader io.Reader) (*PackageManifest, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errutils.Wrap(err, "failed to read manifest")
	}
	return Parse(data)
}

// normalize applies the documented defaults.
func normalize(r raw) *PackageManifest {
	m := &PackageManifest{
		Name:         r.Name,
		Version:      r.Version,
		DisplayName:  r.DisplayName,
		Unity:        DefaultUnity,
		Dependencies: make(map[string]any, len(r.Dependencies)),
	}
	if r.Description != nil {
		m.Description = *r.Description
	}
	if r.Unity != nil && *r.Unity != "" {
		m.Unity = *r.Unity
	}
	for name, rng := range r.Dependencies {
		m.Dependencies[name] = rng
	}
	return m
}

// ValidateName rejects package names that cannot be published as the single
// entry <out>/<name>: empty names, path separators, colons, "." and "..", a
// purely numeric name (it would replace a major-version directory) and the
// reserved listing entries.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: missing name", errutils.ErrManifestInvalid)
	case strings.ContainsAny(name, `/\:`), name == ".", name == "..":
		return fmt.Errorf("%w: name %q is not a plain file name", errutils.ErrManifestInvalid, name)
	case isDigits(name):
		return fmt.Errorf("%w: name %q collides with a major-version directory", errutils.ErrManifestInvalid, name)
	case reservedNames[name]:
		return fmt.Errorf("%w: name %q is reserved", errutils.ErrManifestInvalid, name)
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Title returns the display name, falling back to the package name.
func (m *PackageManifest) Title() string {
	if m.DisplayName != nil && *m.DisplayName != "" {
		return *m.DisplayName
	}
	return m.Name
}

// ArchiveName is the conventional tarball file name, <name>-<version>.tgz.
func (m *PackageManifest) ArchiveName() string {
	return m.Name + "-" + m.Version + ".tgz"
}

// Major returns the leading version component, the bucket the package is
// published under.
func (m *PackageManifest) Major() string {
	major, _, _ := strings.Cut(m.Version, ".")
	return major
}
