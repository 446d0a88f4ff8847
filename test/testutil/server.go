package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestServer serves a directory over HTTP the way a static host serves a
// published registry.
type TestServer struct {
	Server *httptest.Server
	URL    string
}

// NewTestServer serves dir. Requests below /redirect/ are answered with a
// 302 to the same path without the prefix.
func NewTestServer(t *testing.T, dir string) *TestServer {
	t.Helper()

	files := http.FileServer(http.Dir(dir))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rest, ok := strings.CutPrefix(r.URL.Path, "/redirect/"); ok {
			http.Redirect(w, r, "/"+rest, http.StatusFound)
			return
		}
		files.ServeHTTP(w, r)
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &TestServer{
		Server: srv,
		URL:    srv.URL,
	}
}
