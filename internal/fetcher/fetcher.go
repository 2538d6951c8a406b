// Package fetcher downloads remote datasets over HTTP or FTP with per-host
// rate limits and retry, and decodes the XLSX/CSV formats the filings
// source consumes.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Fetcher downloads a URL and returns the response body.
type Fetcher interface {
	Download(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Options configures the combined fetcher.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// multiFetcher dispatches on URL scheme.
type multiFetcher struct {
	http *HTTPFetcher
	ftp  *FTPFetcher
}

// New creates a Fetcher handling http(s) and ftp URLs.
func New(opts Options) Fetcher {
	return &multiFetcher{
		http: NewHTTPFetcher(opts),
		ftp:  NewFTPFetcher(opts.Timeout),
	}
}

func (m *multiFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return m.http.Download(ctx, rawURL)
	case "ftp":
		return m.ftp.Download(ctx, rawURL)
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}
