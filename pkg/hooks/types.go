package hooks

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	PreBuild  HookType = "pre-build"
	PostBuild HookType = "post-build"
)

// Types lists the supported hook types in execution order.
var Types = []HookType{PreBuild, PostBuild}

// Valid reports whether t is a supported hook type.
func (t HookType) Valid() bool {
	switch t {
	case PreBuild, PostBuild:
		return true
	}
	return false
}

// Hook represents a hooks script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	PackagesDir   string
	OutputDir     string
	BaseURL       string
	MajorVersions []string

	// Set for post-build hooks only.
	PackageCount int
	VersionCount int
	// Packages maps package names to their latest version.
	Packages map[string]string

	Vars map[string]interface{}
}
