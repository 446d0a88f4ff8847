package hash

import (
	"context"

	"github.com/glorpus-work/upmreg/pkg/errutils"
)

// Source produces the digest recorded for a published tarball.
type Source interface {
	Digest(ctx context.Context, archivePath, tarballURL string) (Digest, error)
}

// Fetcher downloads the body of a URL.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// LocalSource hashes the archive file on disk.
type LocalSource struct{}

// Digest implements Source.
func (LocalSource) Digest(_ context.Context, archivePath, _ string) (Digest, error) {
	return ComputeFile(archivePath)
}

// RemoteSource hashes the bytes served at the tarball URL, for registries
// whose published copies may differ from the local tree.
type RemoteSource struct {
	Fetcher Fetcher
}

// NewRemoteSource creates a RemoteSource backed by f.
func NewRemoteSource(f Fetcher) *RemoteSource {
	return &RemoteSource{Fetcher: f}
}

// Digest implements Source.
func (s *RemoteSource) Digest(ctx context.Context, _, tarballURL string) (Digest, error) {
	data, err := s.Fetcher.FetchBytes(ctx, tarballURL)
	if err != nil {
		return Digest{}, errutils.Wrapf(err, "failed to fetch %s", tarballURL)
	}
	return Compute(data), nil
}
