package emit_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/upmreg/pkg/emit"
	"github.com/glorpus-work/upmreg/pkg/registry"
)

func TestWriteHTML(t *testing.T) {
	out := t.TempDir()
	e := emit.NewEmitter(out, testSite())

	require.NoError(t, e.WriteHTML(sampleRegistry(), []string{"12", "11"}))

	page := readFile(t, filepath.Join(out, "index.html"))
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Example Package Registry</title>")
	assert.Contains(t, page, "All packages across major versions 12, 11")

	// The latest version has no display name, so the package name is the title.
	assert.Contains(t, page, `<h3>com.example.app <span class="version-badge">Latest: 1.10.0</span></h3>`)
	assert.Contains(t, page, `<code>com.example.base</code>`)
	assert.Less(t,
		strings.Index(page, `<span class="version">1.10.0</span>`),
		strings.Index(page, `<span class="version">1.2.0</span>`))

	// Description of the latest version; raw HTML in it is dropped.
	assert.Contains(t, page, "<p>Newest &amp; ")
	assert.NotContains(t, page, "<best>")

	assert.Contains(t, page, "Registry URL: <code>https://example.com/registry</code>")
	assert.Contains(t, page, `<a href="https://example.com/repo">https://example.com/repo</a>`)
}

func TestWriteHTML_UsageSnippet(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, emit.NewEmitter(out, testSite()).WriteHTML(sampleRegistry(), []string{"1"}))

	page := readFile(t, filepath.Join(out, "index.html"))
	assert.Contains(t, page, "&#34;scopedRegistries&#34;")
	assert.Contains(t, page, "&#34;url&#34;: &#34;https://example.com/registry&#34;")
	assert.Contains(t, page, "&#34;com.example.app&#34;: &#34;1.10.0&#34;")
	assert.Contains(t, page, "&#34;com.example.base&#34;: &#34;2.0.0&#34;")
}

func TestWriteHTML_RendersMarkdownDescription(t *testing.T) {
	r := registry.New()
	title := "Example App"
	v := version("com.example.app", "1.0.0", "The **app** package")
	v.DisplayName = &title
	r.Upsert(v)

	out := t.TempDir()
	require.NoError(t, emit.NewEmitter(out, testSite()).WriteHTML(r, []string{"1"}))

	page := readFile(t, filepath.Join(out, "index.html"))
	assert.Contains(t, page, "<p>The <strong>app</strong> package</p>")
	assert.Contains(t, page, `<h3>Example App <span class="version-badge">Latest: 1.0.0</span></h3>`)
}

func TestWriteHTML_NoRepoURL(t *testing.T) {
	site := testSite()
	site.RepoURL = ""
	out := t.TempDir()

	require.NoError(t, emit.NewEmitter(out, site).WriteHTML(registry.New(), nil))

	page := readFile(t, filepath.Join(out, "index.html"))
	assert.NotContains(t, page, "Repository:")
	assert.Contains(t, page, "&#34;dependencies&#34;: {}")
}
