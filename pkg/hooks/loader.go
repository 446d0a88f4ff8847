package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/upmreg/pkg/errutils"
)

// HookFileExtension is the extension of hook script files.
const HookFileExtension = ".tengo"

// LoadHookFile registers the script at path as the hook of hookType.
// An empty path is a no-op.
func LoadHookFile(manager HookManager, hookType HookType, path string) error {
	if path == "" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrHookLoad, path, err)
	}
	if err := manager.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
		return errutils.Wrapf(err, "error adding hooks %s", hookType)
	}
	return nil
}

// LoadHooksFromDir loads <dir>/<hook-type>.tengo for every supported hook
// type. A missing directory is not an error.
func LoadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: failed to read hooks directory %s: %w", ErrHookLoad, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.Valid() {
			continue // Skip unknown hooks types
		}

		if err := LoadHookFile(manager, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// HookTemplate generates a template for a hooks script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreBuild:
		return `// Pre-build hook
// This script runs before any archive is read.
// Available variables:
// - packagesDir: string - directory holding the major-version buckets
// - outputDir: string - directory the registry is written to
// - baseURL: string - public URL of the registry
// - majorVersions: array - bucket names, highest first
// Assign a message to err to abort the build.

// Example: refuse to build without any bucket
/*
if len(majorVersions) == 0 {
    err = "no major-version directories in " + packagesDir
}
*/`

	case PostBuild:
		return `// Post-build hook
// This script runs after every document has been written.
// Available variables: same as pre-build, plus
// - packageCount: int - number of packages published
// - versionCount: int - number of versions across all packages
// - packages: map - package name to latest version

// Example: print a summary
/*
fmt := import("fmt")
for name, latest in packages {
    fmt.println(name, "@", latest)
}
*/`

	default:
		return "// Unknown hooks type: " + string(hookType)
	}
}
