// Package download fetches remote tarballs for hashing in remote mode.
// Requests are issued once: failures surface immediately and retry policy is
// left to the operator.
package download

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/rs/dnscache"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "upmreg/1.0"

// Fetcher downloads whole response bodies into memory.
type Fetcher struct {
	client    Getter
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithGetter replaces the HTTP client.
func WithGetter(g Getter) Option {
	return func(f *Fetcher) {
		f.client = g
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewFetcher creates a Fetcher whose client resolves hosts through a DNS
// cache. All tarballs of a registry live on one host, so a build resolves it
// once. Redirects are followed by the client.
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	resolver := &dnscache.Resolver{}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP for %s", host)
				},
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchBytes GETs url and returns the body. Any status other than 200 after
// redirects is an error wrapping errutils.ErrDownloadFailed.
func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errutils.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errutils.ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s: %w", resp.StatusCode, url, errutils.ErrDownloadFailed)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w: %w", url, errutils.ErrDownloadFailed, err)
	}
	return data, nil
}
