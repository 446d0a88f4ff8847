package registry

import "strings"

// The External Dependency Manager resolver caches tarballs by URL and keeps
// serving a stale copy after a republish; a versioned query string forces a
// fresh download. No other package gets a query string.
const (
	CacheBustPackage = "com.google.external-dependency-manager"
	CacheBustQuery   = "?v=2"
)

// ArchiveURL is the public location of file in the major bucket.
func ArchiveURL(baseURL, major, file string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + major + "/" + file
}

// TarballURL is the dist.tarball value recorded for packageName's archive.
func TarballURL(baseURL, major, file, packageName string) string {
	u := ArchiveURL(baseURL, major, file)
	if packageName == CacheBustPackage {
		u += CacheBustQuery
	}
	return u
}
