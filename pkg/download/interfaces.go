//go:generate mockgen -destination=./mocks/download.go . Getter

package download

import (
	"net/http"
)

// Getter is the subset of *http.Client used by the Fetcher.
type Getter interface {
	Do(req *http.Request) (*http.Response, error)
}
