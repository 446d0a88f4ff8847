package orchestrator_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/upmreg/pkg/archive"
	"github.com/glorpus-work/upmreg/pkg/download"
	"github.com/glorpus-work/upmreg/pkg/emit"
	"github.com/glorpus-work/upmreg/pkg/hash"
	"github.com/glorpus-work/upmreg/pkg/hooks"
	"github.com/glorpus-work/upmreg/pkg/inspect"
	"github.com/glorpus-work/upmreg/pkg/orchestrator"
	"github.com/glorpus-work/upmreg/pkg/registry"
	"github.com/glorpus-work/upmreg/test/testutil"
)

type buildSetup struct {
	packages string
	output   string
	baseURL  string
	source   hash.Source
	jobs     int
	hooks    orchestrator.HookRunner
}

func runBuild(t *testing.T, s buildSetup) (*orchestrator.Summary, []orchestrator.Event) {
	t.Helper()

	if s.source == nil {
		s.source = hash.LocalSource{}
	}
	if s.jobs == 0 {
		s.jobs = 1
	}
	scratch, err := inspect.NewScratchRoot(t.TempDir())
	require.NoError(t, err)

	var events []orchestrator.Event
	orch := &orchestrator.Orchestrator{
		Aggregator: registry.NewAggregator(inspect.NewInspector(archive.NewManager(), scratch), s.source, s.baseURL, s.jobs),
		Publisher: emit.NewEmitter(s.output, emit.Site{
			Name:      "Test Packages",
			Version:   "1.0.0",
			Title:     "Test Registry",
			ScopeName: "Test",
			BaseURL:   s.baseURL,
			Scopes:    []string{"com.example"},
		}),
		HookRunner: s.hooks,
		Hooks:      orchestrator.Hooks{OnEvent: func(e orchestrator.Event) { events = append(events, e) }},
	}

	summary, err := orch.Build(context.Background(), orchestrator.BuildOptions{
		PackagesDir: s.packages,
		OutputDir:   s.output,
		BaseURL:     s.baseURL,
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directories must be removed")

	return summary, events
}

// seedPackages lays out two buckets where 1.5.0 of com.example.app is
// present in both with different content.
func seedPackages(t *testing.T) string {
	t.Helper()
	packages := t.TempDir()

	b2 := testutil.Bucket(t, packages, 2)
	testutil.WritePackage(t, b2, testutil.Package{Name: "com.example.app", Version: "2.0.0", DisplayName: "Example App"}, nil)
	testutil.WritePackage(t, b2, testutil.Package{Name: "com.example.app", Version: "1.5.0"}, map[string]string{"origin": "bucket 2"})
	testutil.WritePackage(t, b2, testutil.Package{Name: registry.CacheBustPackage, Version: "1.2.0"}, nil)

	b1 := testutil.Bucket(t, packages, 1)
	testutil.WritePackage(t, b1, testutil.Package{Name: "com.example.app", Version: "1.5.0"}, map[string]string{"origin": "bucket 1"})
	testutil.WritePackage(t, b1, testutil.Package{Name: "com.example.app", Version: "1.10.0"}, nil)
	testutil.WriteArchive(t, filepath.Join(b1, "broken.tgz"), archive.PackagePrefix, map[string]string{"README.md": "x"})
	require.NoError(t, os.WriteFile(filepath.Join(b1, "notes.txt"), []byte("ignored"), 0o644))

	require.NoError(t, os.Mkdir(filepath.Join(packages, "drafts"), 0o755))
	return packages
}

type packageDoc struct {
	Name     string `json:"name"`
	Versions map[string]struct {
		Version     string  `json:"version"`
		DisplayName *string `json:"displayName"`
		Dist        struct {
			Tarball   string `json:"tarball"`
			Shasum    string `json:"shasum"`
			Integrity string `json:"integrity"`
		} `json:"dist"`
	} `json:"versions"`
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
}

func readPackageDoc(t *testing.T, path string) packageDoc {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc packageDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestBuild_EndToEnd(t *testing.T) {
	packages := seedPackages(t)
	output := t.TempDir()
	baseURL := "https://example.com/registry"

	summary, events := runBuild(t, buildSetup{packages: packages, output: output, baseURL: baseURL})

	assert.Equal(t, []string{"2", "1"}, summary.Majors)
	assert.Equal(t, 6, summary.Archives)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Packages)
	assert.Equal(t, 4, summary.Versions)

	doc := readPackageDoc(t, filepath.Join(output, "com.example.app"))
	assert.Equal(t, "2.0.0", doc.DistTags.Latest)
	assert.Len(t, doc.Versions, 4)

	// Bucket 1 is processed last, so its copy of 1.5.0 wins.
	bucket1Digest, err := hash.ComputeFile(filepath.Join(packages, "1", "com.example.app-1.5.0.tgz"))
	require.NoError(t, err)
	assert.Equal(t, bucket1Digest.Shasum, doc.Versions["1.5.0"].Dist.Shasum)
	assert.Equal(t, bucket1Digest.Integrity, doc.Versions["1.5.0"].Dist.Integrity)
	assert.Equal(t, baseURL+"/1/com.example.app-1.5.0.tgz", doc.Versions["1.5.0"].Dist.Tarball)

	require.NotNil(t, doc.Versions["2.0.0"].DisplayName)
	assert.Equal(t, "Example App", *doc.Versions["2.0.0"].DisplayName)
	assert.Nil(t, doc.Versions["1.10.0"].DisplayName)

	edm := readPackageDoc(t, filepath.Join(output, registry.CacheBustPackage+".json"))
	assert.Equal(t, baseURL+"/2/"+registry.CacheBustPackage+"-1.2.0.tgz?v=2", edm.Versions["1.2.0"].Dist.Tarball)

	assert.FileExists(t, filepath.Join(output, ".nojekyll"))
	assert.FileExists(t, filepath.Join(output, "index.json"))
	assert.FileExists(t, filepath.Join(output, "index.html"))
	assert.FileExists(t, filepath.Join(output, "-", "all.json"))
	assert.ElementsMatch(t,
		[]string{"broken.tgz", "com.example.app-1.10.0.tgz", "com.example.app-1.5.0.tgz"},
		testutil.ReadDirNames(t, filepath.Join(output, "1")))
	assert.NoDirExists(t, filepath.Join(output, "drafts"))

	var skipped []string
	for _, e := range events {
		if e.Phase == orchestrator.PhaseSkipped {
			skipped = append(skipped, e.ID)
		}
	}
	assert.Equal(t, []string{"broken.tgz"}, skipped)
}

func TestBuild_Idempotent(t *testing.T) {
	packages := seedPackages(t)
	output := t.TempDir()
	setup := buildSetup{packages: packages, output: output, baseURL: "https://example.com"}

	runBuild(t, setup)
	first := snapshot(t, output)
	runBuild(t, setup)
	second := snapshot(t, output)

	assert.Equal(t, first, second)
}

func TestBuild_ParallelMatchesSequential(t *testing.T) {
	packages := seedPackages(t)

	seqOut := t.TempDir()
	runBuild(t, buildSetup{packages: packages, output: seqOut, baseURL: "https://example.com", jobs: 1})
	parOut := t.TempDir()
	runBuild(t, buildSetup{packages: packages, output: parOut, baseURL: "https://example.com", jobs: 4})

	assert.Equal(t, snapshot(t, seqOut), snapshot(t, parOut))
}

func TestBuild_EmptyPackagesDir(t *testing.T) {
	output := t.TempDir()
	summary, _ := runBuild(t, buildSetup{packages: t.TempDir(), output: output, baseURL: "https://example.com"})

	assert.Empty(t, summary.Majors)
	assert.Zero(t, summary.Packages)
	data, err := os.ReadFile(filepath.Join(output, "-", "all"))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestBuild_RemoteHashing(t *testing.T) {
	packages := seedPackages(t)
	srv := testutil.NewTestServer(t, packages)
	fetcher := download.NewFetcher(5 * time.Second)

	localOut := t.TempDir()
	runBuild(t, buildSetup{packages: packages, output: localOut, baseURL: srv.URL + "/redirect"})
	remoteOut := t.TempDir()
	summary, _ := runBuild(t, buildSetup{
		packages: packages,
		output:   remoteOut,
		baseURL:  srv.URL + "/redirect",
		source:   hash.NewRemoteSource(fetcher),
	})

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, snapshot(t, localOut), snapshot(t, remoteOut))
}

func TestBuild_RemoteMissingTarballIsSkipped(t *testing.T) {
	packages := seedPackages(t)
	// Serve an empty tree so every tarball 404s.
	srv := testutil.NewTestServer(t, t.TempDir())

	summary, events := runBuild(t, buildSetup{
		packages: packages,
		output:   t.TempDir(),
		baseURL:  srv.URL,
		source:   hash.NewRemoteSource(download.NewFetcher(5 * time.Second)),
	})

	assert.Equal(t, summary.Archives, summary.Skipped)
	assert.Zero(t, summary.Packages)

	var skipped int
	for _, e := range events {
		if e.Phase == orchestrator.PhaseSkipped {
			skipped++
		}
	}
	assert.Equal(t, summary.Archives, skipped)
}

func TestBuild_WithTengoHooks(t *testing.T) {
	packages := seedPackages(t)
	output := t.TempDir()

	manager := hooks.NewHookManager()
	require.NoError(t, manager.AddHook(hooks.Hook{Type: hooks.PostBuild, Content: `
		os := import("os")
		f := os.create(outputDir + "/CNAME")
		f.write_string("registry.example.com")
		f.close()
		if packageCount != 2 { err = "unexpected package count" }
	`}))

	runBuild(t, buildSetup{packages: packages, output: output, baseURL: "https://example.com", hooks: manager})

	data, err := os.ReadFile(filepath.Join(output, "CNAME"))
	require.NoError(t, err)
	assert.Equal(t, "registry.example.com", string(data))
}

func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestBuild_UnsafeNamesDoNotTouchPublishedFiles(t *testing.T) {
	packages := t.TempDir()
	parent := t.TempDir()
	output := filepath.Join(parent, "docs")

	b12 := testutil.Bucket(t, packages, 12)
	testutil.WritePackage(t, b12, testutil.Package{Name: "com.example.app", Version: "12.0.0"}, nil)
	testutil.WriteArchive(t, filepath.Join(b12, "shadow.tgz"), archive.PackagePrefix, map[string]string{
		"package.json": `{"name":"12","version":"12.0.0"}`,
	})
	testutil.WriteArchive(t, filepath.Join(b12, "escape.tgz"), archive.PackagePrefix, map[string]string{
		"package.json": `{"name":"../escaped","version":"12.0.0"}`,
	})

	summary, _ := runBuild(t, buildSetup{packages: packages, output: output, baseURL: "https://example.com"})

	assert.Equal(t, 3, summary.Archives)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Packages)
	assert.ElementsMatch(t,
		[]string{"com.example.app-12.0.0.tgz", "escape.tgz", "shadow.tgz"},
		testutil.ReadDirNames(t, filepath.Join(output, "12")))
	assert.NoFileExists(t, filepath.Join(parent, "escaped"))
	assert.NoFileExists(t, filepath.Join(parent, "escaped.json"))
}
