package manifest

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-version"
)

// Lint reports problems that registry clients may trip over. None of them
// stop a package from being published.
func (m *PackageManifest) Lint() []string {
	var warnings []string

	if _, err := version.NewSemver(m.Version); err != nil {
		warnings = append(warnings, fmt.Sprintf("version %q is not a semantic version", m.Version))
	}

	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rng, ok := m.Dependencies[name].(string)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("dependency %s has non-string range %v", name, m.Dependencies[name]))
			continue
		}
		if _, err := version.NewConstraint(rng); err != nil {
			warnings = append(warnings, fmt.Sprintf("dependency %s has unparseable range %q", name, rng))
		}
	}
	return warnings
}
