package emit

import "github.com/glorpus-work/upmreg/pkg/registry"

// IndexDocument is the content of index.json.
type IndexDocument struct {
	Name     string         `json:"name"`
	Version  string         `json:"version"`
	Packages []IndexPackage `json:"packages"`
}

// IndexPackage summarizes one package in index.json. Versions are listed in
// registry order, not sorted.
type IndexPackage struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
	Latest   string   `json:"latest"`
}

// BuildIndex summarizes root for index.json.
func BuildIndex(site Site, root *registry.Registry) IndexDocument {
	doc := IndexDocument{
		Name:     site.Name,
		Version:  site.Version,
		Packages: make([]IndexPackage, 0, root.Len()),
	}
	for _, name := range root.Names() {
		pkg, _ := root.Package(name)
		doc.Packages = append(doc.Packages, IndexPackage{
			Name:     name,
			Versions: pkg.Versions(),
			Latest:   pkg.Latest,
		})
	}
	return doc
}
