package registry

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/upmreg/pkg/hash"
	"github.com/glorpus-work/upmreg/pkg/manifest"
)

// ManifestReader extracts the manifest of an archive.
type ManifestReader interface {
	Inspect(ctx context.Context, archivePath string) (*manifest.PackageManifest, error)
}

// Outcome reports what happened to one archive of a bucket.
type Outcome struct {
	Archive  string
	Entry    *VersionEntry
	Warnings []string
	Err      error
}

// Skipped reports whether the archive was left out of the registry.
func (o Outcome) Skipped() bool {
	return o.Err != nil
}

// Aggregator builds the registry of a single bucket.
type Aggregator struct {
	Inspector ManifestReader
	Hasher    hash.Source
	BaseURL   string
	// Jobs bounds concurrent inspections; values below 2 run sequentially.
	Jobs int
}

// NewAggregator creates an Aggregator.
func NewAggregator(inspector ManifestReader, hasher hash.Source, baseURL string, jobs int) *Aggregator {
	return &Aggregator{
		Inspector: inspector,
		Hasher:    hasher,
		BaseURL:   baseURL,
		Jobs:      jobs,
	}
}

// Aggregate inspects and hashes every archive of bucket and returns the
// bucket registry with one Outcome per archive, in filename order. Archive
// failures are reported in their Outcome and do not fail the call; only an
// unreadable bucket directory or a cancelled context does.
func (a *Aggregator) Aggregate(ctx context.Context, bucket Bucket) (*Registry, []Outcome, error) {
	archives, err := bucket.Archives()
	if err != nil {
		return nil, nil, err
	}

	outcomes := make([]Outcome, len(archives))
	if a.Jobs < 2 {
		for i, name := range archives {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			outcomes[i] = a.describe(ctx, bucket, name)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.Jobs)
		for i, name := range archives {
			g.Go(func() error {
				outcomes[i] = a.describe(gctx, bucket, name)
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}

	reg := New()
	for _, o := range outcomes {
		if o.Entry != nil {
			reg.Upsert(*o.Entry)
		}
	}
	return reg, outcomes, nil
}

func (a *Aggregator) describe(ctx context.Context, bucket Bucket, file string) Outcome {
	path := filepath.Join(bucket.Dir, file)

	m, err := a.Inspector.Inspect(ctx, path)
	if err != nil {
		return Outcome{Archive: file, Err: err}
	}

	digest, err := a.Hasher.Digest(ctx, path, ArchiveURL(a.BaseURL, bucket.Major, file))
	if err != nil {
		return Outcome{Archive: file, Err: err}
	}

	entry := NewVersionEntry(m, DistInfo{
		Tarball:   TarballURL(a.BaseURL, bucket.Major, file, m.Name),
		Shasum:    digest.Shasum,
		Integrity: digest.Integrity,
	})
	return Outcome{Archive: file, Entry: &entry, Warnings: m.Lint()}
}
