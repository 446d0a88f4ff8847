package registry

import (
	"sort"
	"strconv"
	"strings"
)

// triplet is the numeric major.minor.patch key used to order versions.
type triplet [3]int64

// parseTriplet splits v on dots and reads the first three components as
// integers. Missing or non-numeric components are 0, so "1.0.0-preview"
// orders like "1.0.0" and "2" like "2.0.0".
func parseTriplet(v string) triplet {
	var t triplet
	parts := strings.Split(v, ".")
	for i := 0; i < len(t) && i < len(parts); i++ {
		if n, err := strconv.ParseInt(parts[i], 10, 64); err == nil {
			t[i] = n
		}
	}
	return t
}

// CompareVersions returns -1, 0 or 1 when a orders before, equal to or after b.
func CompareVersions(a, b string) int {
	ta, tb := parseTriplet(a), parseTriplet(b)
	for i := range ta {
		switch {
		case ta[i] < tb[i]:
			return -1
		case ta[i] > tb[i]:
			return 1
		}
	}
	return 0
}

// SortDescending returns a copy of versions ordered newest first. Versions
// with equal triplets keep their relative order.
func SortDescending(versions []string) []string {
	out := make([]string, len(versions))
	copy(out, versions)
	sort.SliceStable(out, func(i, j int) bool {
		return CompareVersions(out[i], out[j]) > 0
	})
	return out
}

// Latest returns the first version of SortDescending(versions), or "" for none.
func Latest(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	return SortDescending(versions)[0]
}
