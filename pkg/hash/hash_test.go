package hash

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shasumPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

func TestCompute_KnownVectors(t *testing.T) {
	d := Compute([]byte("abc"))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", d.Shasum)
	assert.Equal(t,
		"sha512-3a81oZNherrMQXNJriBBMRLm+k6JqX6iCp7u5ktV05ohkpkqJ0/BqDa6PCOj/uu9RU1EI2Q86A4qmslPpUyknw==",
		d.Integrity)
}

func TestCompute_Shape(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("a"),
		bytes.Repeat([]byte{0xff}, 1<<16),
		[]byte(strings.Repeat("package", 999)),
	}

	for _, in := range inputs {
		d := Compute(in)

		assert.Regexp(t, shasumPattern, d.Shasum)
		require.True(t, strings.HasPrefix(d.Integrity, IntegrityPrefix))

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(d.Integrity, IntegrityPrefix))
		require.NoError(t, err)
		assert.Len(t, raw, sha512.Size)
	}
}

func TestComputeReader_MatchesCompute(t *testing.T) {
	data := []byte("tarball bytes")
	got, err := ComputeReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Compute(data), got)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestComputeReader_PropagatesError(t *testing.T) {
	_, err := ComputeReader(failingReader{})
	assert.ErrorContains(t, err, "disk on fire")
}

func TestComputeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.tgz")
	require.NoError(t, os.WriteFile(path, []byte("contents"), 0644))

	got, err := ComputeFile(path)
	require.NoError(t, err)
	assert.Equal(t, Compute([]byte("contents")), got)

	_, err = ComputeFile(filepath.Join(t.TempDir(), "missing.tgz"))
	assert.Error(t, err)
}

type stubFetcher struct {
	data []byte
	err  error
	urls []string
}

func (s *stubFetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	s.urls = append(s.urls, url)
	return s.data, s.err
}

func TestSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.tgz")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0644))

	local, err := LocalSource{}.Digest(context.Background(), path, "https://example.com/1/pkg.tgz")
	require.NoError(t, err)
	assert.Equal(t, Compute([]byte("local")), local)

	fetcher := &stubFetcher{data: []byte("remote")}
	remote, err := NewRemoteSource(fetcher).Digest(context.Background(), path, "https://example.com/1/pkg.tgz")
	require.NoError(t, err)
	assert.Equal(t, Compute([]byte("remote")), remote)
	assert.Equal(t, []string{"https://example.com/1/pkg.tgz"}, fetcher.urls)

	fetcher.err = errors.New("HTTP 404")
	_, err = NewRemoteSource(fetcher).Digest(context.Background(), path, "https://example.com/1/pkg.tgz")
	assert.ErrorContains(t, err, "HTTP 404")
}
