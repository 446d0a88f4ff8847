package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/glorpus-work/upmreg/pkg/errutils"
)

// ArchiveExt is the only file extension treated as a package archive.
const ArchiveExt = ".tgz"

var majorDirPattern = regexp.MustCompile(`^\d+$`)

// Bucket is one major-version directory of archives.
type Bucket struct {
	// Major is the directory name, used verbatim in tarball URLs.
	Major string
	Dir   string
}

// DiscoverBuckets lists the subdirectories of packagesDir whose names are
// unsigned integers, highest major first. Other entries are ignored.
func DiscoverBuckets(packagesDir string) ([]Bucket, error) {
	entries, err := os.ReadDir(packagesDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errutils.ErrSourceDirectory, packagesDir, err)
	}

	var buckets []Bucket
	for _, e := range entries {
		if !majorDirPattern.MatchString(e.Name()) {
			continue
		}
		if !isDir(packagesDir, e) {
			continue
		}
		buckets = append(buckets, Bucket{Major: e.Name(), Dir: filepath.Join(packagesDir, e.Name())})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if c := compareNumeric(buckets[i].Major, buckets[j].Major); c != 0 {
			return c > 0
		}
		return buckets[i].Major < buckets[j].Major
	})
	return buckets, nil
}

// Majors returns the bucket names in order.
func Majors(buckets []Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Major
	}
	return out
}

// Archives lists the .tgz files of the bucket in filename order.
func (b Bucket) Archives() ([]string, error) {
	entries, err := os.ReadDir(b.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: bucket %s: %w", errutils.ErrSourceDirectory, b.Major, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ArchiveExt) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// isDir follows symlinks so a linked bucket directory is still scanned.
func isDir(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}

// compareNumeric orders two unsigned decimal strings of any length.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
