// Package hash computes the checksums registry clients use to verify package
// tarballs: a legacy SHA-1 shasum and an SHA-512 subresource-integrity digest.
package hash

import (
	"crypto/sha1" //nolint:gosec // shasum is part of the npm document format
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"io"
	"os"

	"github.com/glorpus-work/upmreg/pkg/errutils"
)

// IntegrityPrefix is the algorithm tag of the integrity string.
const IntegrityPrefix = "sha512-"

// Digest holds both checksums of one tarball.
type Digest struct {
	// Shasum is the lower-case hex SHA-1 of the tarball.
	Shasum string
	// Integrity is "sha512-" followed by the base64 SHA-512 of the tarball.
	Integrity string
}

// Compute hashes data.
func Compute(data []byte) Digest {
	sum1 := sha1.Sum(data) //nolint:gosec
	sum512 := sha512.Sum512(data)
	return Digest{
		Shasum:    hex.EncodeToString(sum1[:]),
		Integrity: IntegrityPrefix + base64.StdEncoding.EncodeToString(sum512[:]),
	}
}

// ComputeReader hashes everything read from r in a single pass.
func ComputeReader(r io.Reader) (Digest, error) {
	h1 := sha1.New() //nolint:gosec
	h512 := sha512.New()
	if _, err := io.Copy(io.MultiWriter(h1, h512), r); err != nil {
		return Digest{}, errutils.Wrap(err, "failed to read data for hashing")
	}
	return Digest{
		Shasum:    hex.EncodeToString(h1.Sum(nil)),
		Integrity: IntegrityPrefix + base64.StdEncoding.EncodeToString(h512.Sum(nil)),
	}, nil
}

// ComputeFile hashes the file at path.
func ComputeFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, errutils.Wrapf(err, "failed to open %s for hashing", path)
	}
	defer func() { _ = f.Close() }()
	return ComputeReader(f)
}
