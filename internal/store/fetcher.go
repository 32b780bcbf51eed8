package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/studymate/internal/gcp"
)

// MaxDocumentBytes caps how much of a remote PDF is read.
const MaxDocumentBytes = 256 << 20

// Fetcher downloads the bytes behind a document URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// GCSFetcher reads gs://bucket/object URLs.
type GCSFetcher struct {
	client *storage.Client
}

func NewGCSFetcher(client *storage.Client) *GCSFetcher {
	return &GCSFetcher{client: client}
}

func (f *GCSFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	bucket, object, err := gcp.ParseGCSURI(url)
	if err != nil {
		return nil, err
	}
	return gcp.ReadObject(ctx, f.client, bucket, object)
}

// HTTPFetcher downloads http(s) URLs such as CDN links.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	if len(data) > MaxDocumentBytes {
		return nil, fmt.Errorf("document at %s exceeds %d bytes", url, MaxDocumentBytes)
	}
	return data, nil
}

// FileFetcher reads file:// URLs and bare paths.
type FileFetcher struct{}

func (FileFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	path := strings.TrimPrefix(url, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Router dispatches on the URL scheme. A nil backend rejects its scheme.
type Router struct {
	GCS  Fetcher
	HTTP Fetcher
	File Fetcher
}

func (r *Router) Fetch(ctx context.Context, url string) ([]byte, error) {
	var backend Fetcher
	switch {
	case strings.HasPrefix(url, "gs://"):
		backend = r.GCS
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		backend = r.HTTP
	case strings.HasPrefix(url, "file://"), url != "" && !strings.Contains(url, "://"):
		backend = r.File
	}
	if backend == nil {
		if url == "" {
			return nil, errors.New("empty document URL")
		}
		return nil, fmt.Errorf("no fetcher configured for %q", url)
	}
	return backend.Fetch(ctx, url)
}
