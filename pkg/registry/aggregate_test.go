package registry_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/upmreg/pkg/archive"
	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/glorpus-work/upmreg/pkg/hash"
	"github.com/glorpus-work/upmreg/pkg/inspect"
	"github.com/glorpus-work/upmreg/pkg/registry"
	"github.com/glorpus-work/upmreg/test/testutil"
)

const baseURL = "https://example.com/registry"

func newAggregator(t *testing.T, jobs int) *registry.Aggregator {
	t.Helper()
	return registry.NewAggregator(
		inspect.NewInspector(archive.NewManager(), t.TempDir()),
		hash.LocalSource{},
		baseURL,
		jobs,
	)
}

func TestAggregate_BuildsEntries(t *testing.T) {
	root := t.TempDir()
	dir := testutil.Bucket(t, root, 12)
	path := testutil.WritePackage(t, dir, testutil.Package{
		Name:        "com.example.app",
		Version:     "12.0.0",
		DisplayName: "Example App",
	}, nil)
	testutil.WritePackage(t, dir, testutil.Package{Name: "com.example.app", Version: "12.1.0"}, nil)

	reg, outcomes, err := newAggregator(t, 1).Aggregate(context.Background(), registry.Bucket{Major: "12", Dir: dir})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	p, ok := reg.Package("com.example.app")
	require.True(t, ok)
	assert.Equal(t, "12.1.0", p.Latest)

	v, ok := p.Version("12.0.0")
	require.True(t, ok)
	want, err := hash.ComputeFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.Shasum, v.Dist.Shasum)
	assert.Equal(t, want.Integrity, v.Dist.Integrity)
	assert.Equal(t, baseURL+"/12/com.example.app-12.0.0.tgz", v.Dist.Tarball)
	assert.Equal(t, "Example App", v.Title())
	assert.Equal(t, "2020.1", v.Unity)
	assert.NotNil(t, v.Dependencies)
}

func TestAggregate_SkipsArchiveWithoutManifest(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 1)
	testutil.WriteArchive(t, filepath.Join(dir, "a-broken.tgz"), archive.PackagePrefix, map[string]string{
		"README.md": "no manifest here",
	})
	testutil.WritePackage(t, dir, testutil.Package{Name: "com.example.ok", Version: "1.0.0"}, nil)

	reg, outcomes, err := newAggregator(t, 1).Aggregate(context.Background(), registry.Bucket{Major: "1", Dir: dir})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "a-broken.tgz", outcomes[0].Archive)
	assert.True(t, outcomes[0].Skipped())
	assert.True(t, errors.Is(outcomes[0].Err, errutils.ErrManifestNotFound))
	assert.False(t, outcomes[1].Skipped())

	assert.Equal(t, []string{"com.example.ok"}, reg.Names())
}

func TestAggregate_IgnoresNonArchives(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg.tar.gz"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.tgz"), 0o755))

	reg, outcomes, err := newAggregator(t, 1).Aggregate(context.Background(), registry.Bucket{Major: "1", Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Zero(t, reg.Len())
}

func TestAggregate_CorruptArchiveIsSkipped(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.tgz"), []byte("not a tarball"), 0o644))

	reg, outcomes, err := newAggregator(t, 1).Aggregate(context.Background(), registry.Bucket{Major: "1", Dir: dir})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, errors.Is(outcomes[0].Err, errutils.ErrExtractFailed))
	assert.Zero(t, reg.Len())
}

func TestAggregate_UnreadableBucketIsFatal(t *testing.T) {
	_, _, err := newAggregator(t, 1).Aggregate(context.Background(), registry.Bucket{
		Major: "1",
		Dir:   filepath.Join(t.TempDir(), "missing"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errutils.ErrSourceDirectory))
}

func TestAggregate_CacheBustedTarball(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 1)
	testutil.WritePackage(t, dir, testutil.Package{Name: registry.CacheBustPackage, Version: "1.2.3"}, nil)

	reg, _, err := newAggregator(t, 1).Aggregate(context.Background(), registry.Bucket{Major: "1", Dir: dir})
	require.NoError(t, err)

	p, _ := reg.Package(registry.CacheBustPackage)
	v, _ := p.Version("1.2.3")
	assert.Equal(t, baseURL+"/1/"+registry.CacheBustPackage+"-1.2.3.tgz?v=2", v.Dist.Tarball)
}

func TestAggregate_LintWarningsReported(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 1)
	testutil.WritePackage(t, dir, testutil.Package{
		Name:         "com.example.app",
		Version:      "not-a-version",
		Dependencies: map[string]string{"com.example.dep": "definitely not a range"},
	}, nil)

	reg, outcomes, err := newAggregator(t, 1).Aggregate(context.Background(), registry.Bucket{Major: "1", Dir: dir})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Skipped())
	assert.Len(t, outcomes[0].Warnings, 2)
	assert.Equal(t, 1, reg.Len())
}

func TestAggregate_ParallelMatchesSequential(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 3)
	for _, v := range []string{"3.0.0", "3.1.0", "3.10.0", "3.2.0", "3.9.1"} {
		testutil.WritePackage(t, dir, testutil.Package{Name: "com.example.a", Version: v}, nil)
		testutil.WritePackage(t, dir, testutil.Package{Name: "com.example.b", Version: v}, nil)
	}
	testutil.WriteArchive(t, filepath.Join(dir, "com.example.c-0.tgz"), "", map[string]string{"x": "y"})

	bucket := registry.Bucket{Major: "3", Dir: dir}
	seq, seqOutcomes, err := newAggregator(t, 1).Aggregate(context.Background(), bucket)
	require.NoError(t, err)
	par, parOutcomes, err := newAggregator(t, 4).Aggregate(context.Background(), bucket)
	require.NoError(t, err)

	seqJSON, err := json.Marshal(seq)
	require.NoError(t, err)
	parJSON, err := json.Marshal(par)
	require.NoError(t, err)
	assert.Equal(t, string(seqJSON), string(parJSON))

	require.Len(t, parOutcomes, len(seqOutcomes))
	for i := range seqOutcomes {
		assert.Equal(t, seqOutcomes[i].Archive, parOutcomes[i].Archive)
		assert.Equal(t, seqOutcomes[i].Skipped(), parOutcomes[i].Skipped())
	}
}

func TestAggregate_CancelledContext(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 1)
	testutil.WritePackage(t, dir, testutil.Package{Name: "com.example.a", Version: "1.0.0"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, jobs := range []int{1, 2} {
		_, _, err := newAggregator(t, jobs).Aggregate(ctx, registry.Bucket{Major: "1", Dir: dir})
		assert.ErrorIs(t, err, context.Canceled)
	}
}

type failingSource struct{ err error }

func (f failingSource) Digest(context.Context, string, string) (hash.Digest, error) {
	return hash.Digest{}, f.err
}

func TestAggregate_HashFailureIsSkip(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 1)
	testutil.WritePackage(t, dir, testutil.Package{Name: "com.example.a", Version: "1.0.0"}, nil)

	agg := registry.NewAggregator(
		inspect.NewInspector(archive.NewManager(), t.TempDir()),
		failingSource{err: errutils.ErrDownloadFailed},
		baseURL,
		1,
	)
	reg, outcomes, err := agg.Aggregate(context.Background(), registry.Bucket{Major: "1", Dir: dir})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, errutils.ErrDownloadFailed)
	assert.Zero(t, reg.Len())
}

func TestDiscoverBuckets(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"9", "12", "10", "007", "beta", "1.0"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "13"), []byte("file"), 0o644))

	buckets, err := registry.DiscoverBuckets(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"12", "10", "9", "007"}, registry.Majors(buckets))
	assert.Equal(t, filepath.Join(root, "12"), buckets[0].Dir)
}

func TestDiscoverBuckets_MissingDir(t *testing.T) {
	_, err := registry.DiscoverBuckets(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, errutils.ErrSourceDirectory)
}

func TestAggregate_SkipsUnsafePackageNames(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 12)
	for i, name := range []string{"../escaped", "12", "-", "index.json", "index.html", ".nojekyll"} {
		manifest, err := json.Marshal(map[string]string{"name": name, "version": "12.0.0"})
		require.NoError(t, err)
		testutil.WriteArchive(t, filepath.Join(dir, "bad-"+string(rune('a'+i))+".tgz"), archive.PackagePrefix, map[string]string{
			"package.json": string(manifest),
		})
	}
	testutil.WritePackage(t, dir, testutil.Package{Name: "com.example.ok", Version: "12.0.0"}, nil)

	reg, outcomes, err := newAggregator(t, 1).Aggregate(context.Background(), registry.Bucket{Major: "12", Dir: dir})
	require.NoError(t, err)
	require.Len(t, outcomes, 7)

	for _, o := range outcomes[:6] {
		assert.True(t, o.Skipped(), o.Archive)
		assert.ErrorIs(t, o.Err, errutils.ErrManifestInvalid, o.Archive)
	}
	assert.False(t, outcomes[6].Skipped())
	assert.Equal(t, []string{"com.example.ok"}, reg.Names())
}

func TestAggregate_NonStringDependencyIsKept(t *testing.T) {
	dir := testutil.Bucket(t, t.TempDir(), 1)
	testutil.WriteArchive(t, filepath.Join(dir, "com.example.app-1.0.0.tgz"), archive.PackagePrefix, map[string]string{
		"package.json": `{"name":"com.example.app","version":"1.0.0","dependencies":{"com.example.dep":1}}`,
	})

	reg, outcomes, err := newAggregator(t, 1).Aggregate(context.Background(), registry.Bucket{Major: "1", Dir: dir})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Skipped())
	assert.Len(t, outcomes[0].Warnings, 1)

	p, ok := reg.Package("com.example.app")
	require.True(t, ok)
	v, _ := p.Version("1.0.0")
	data, err := json.Marshal(v.Dependencies)
	require.NoError(t, err)
	assert.JSONEq(t, `{"com.example.dep":1}`, string(data))
}
