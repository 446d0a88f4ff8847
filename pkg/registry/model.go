// Package registry aggregates inspected package archives into npm-style
// registry documents: one Registry per major-version bucket, merged into a
// single root Registry keyed by package name.
//
// Registries and package entries remember insertion order and marshal their
// keys in that order, so identical inputs always produce identical bytes.
package registry

import (
	"bytes"
	"encoding/json"

	"github.com/glorpus-work/upmreg/pkg/manifest"
)

// DistInfo locates and verifies one published tarball.
type DistInfo struct {
	Tarball   string `json:"tarball"`
	Shasum    string `json:"shasum"`
	Integrity string `json:"integrity"`
}

// VersionEntry is the registry record of one published version of a package.
type VersionEntry struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	DisplayName  *string        `json:"displayName,omitempty"`
	Description  string         `json:"description"`
	Unity        string         `json:"unity"`
	Dependencies map[string]any `json:"dependencies"`
	Dist         DistInfo       `json:"dist"`
}

// NewVersionEntry joins a manifest with its dist information.
func NewVersionEntry(m *manifest.PackageManifest, dist DistInfo) VersionEntry {
	return VersionEntry{
		Name:         m.Name,
		Version:      m.Version,
		DisplayName:  m.DisplayName,
		Description:  m.Description,
		Unity:        m.Unity,
		Dependencies: m.Dependencies,
		Dist:         dist,
	}
}

// Title returns the display name, falling back to the package name.
func (v VersionEntry) Title() string {
	if v.DisplayName != nil && *v.DisplayName != "" {
		return *v.DisplayName
	}
	return v.Name
}

// DistTags holds the dist-tags of a package document.
type DistTags struct {
	Latest string `json:"latest"`
}

// PackageEntry accumulates every known version of one package.
type PackageEntry struct {
	Name   string
	Latest string

	order    []string
	versions map[string]VersionEntry
}

func newPackageEntry(name string) *PackageEntry {
	return &PackageEntry{
		Name:     name,
		versions: make(map[string]VersionEntry),
	}
}

// put inserts or replaces the entry for v.Version. A replaced version keeps
// its original position.
func (p *PackageEntry) put(v VersionEntry) {
	if _, ok := p.versions[v.Version]; !ok {
		p.order = append(p.order, v.Version)
	}
	p.versions[v.Version] = v
}

func (p *PackageEntry) resolveLatest() {
	p.Latest = Latest(p.order)
}

// Version returns the entry for version.
func (p *PackageEntry) Version(version string) (VersionEntry, bool) {
	v, ok := p.versions[version]
	return v, ok
}

// Versions returns the version strings in insertion order.
func (p *PackageEntry) Versions() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Len returns the number of versions.
func (p *PackageEntry) Len() int {
	return len(p.order)
}

// MarshalJSON renders the package document {name, versions, dist-tags}.
func (p *PackageEntry) MarshalJSON() ([]byte, error) {
	versions, err := marshalOrdered(p.order, func(key string) any {
		return p.versions[key]
	})
	if err != nil {
		return nil, err
	}
	return marshalNoEscape(struct {
		Name     string          `json:"name"`
		Versions json.RawMessage `json:"versions"`
		DistTags DistTags        `json:"dist-tags"`
	}{
		Name:     p.Name,
		Versions: versions,
		DistTags: DistTags{Latest: p.Latest},
	})
}

// Registry maps package names to their entries.
type Registry struct {
	order    []string
	packages map[string]*PackageEntry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{packages: make(map[string]*PackageEntry)}
}

func (r *Registry) entry(name string) *PackageEntry {
	p, ok := r.packages[name]
	if !ok {
		p = newPackageEntry(name)
		r.packages[name] = p
		r.order = append(r.order, name)
	}
	return p
}

// Upsert records v under its package and re-resolves that package's latest version.
func (r *Registry) Upsert(v VersionEntry) {
	p := r.entry(v.Name)
	p.put(v)
	p.resolveLatest()
}

// Package returns the entry for name.
func (r *Registry) Package(name string) (*PackageEntry, bool) {
	p, ok := r.packages[name]
	return p, ok
}

// Names returns package names in first-seen order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of packages.
func (r *Registry) Len() int {
	return len(r.order)
}

// VersionCount returns the number of versions across all packages.
func (r *Registry) VersionCount() int {
	n := 0
	for _, p := range r.packages {
		n += p.Len()
	}
	return n
}

// MarshalJSON renders name -> package document in first-seen order.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return marshalOrdered(r.order, func(key string) any {
		return r.packages[key]
	})
}

// marshalNoEscape encodes v without escaping <, > and &, which appear in
// descriptions and version ranges.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshalOrdered(keys []string, value func(key string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := marshalNoEscape(value(key))
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
