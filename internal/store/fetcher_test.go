package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/doc.pdf" {
			_, _ = w.Write([]byte("%PDF-1.4 body"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	data, err := f.Fetch(context.Background(), srv.URL+"/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.pdf")
	assert.ErrorContains(t, err, "404")
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0o600))

	for _, url := range []string{path, "file://" + path} {
		data, err := FileFetcher{}.Fetch(context.Background(), url)
		require.NoError(t, err)
		assert.Equal(t, "local", string(data))
	}

	_, err := FileFetcher{}.Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

type stubFetcher string

func (s stubFetcher) Fetch(context.Context, string) ([]byte, error) {
	return []byte(s), nil
}

func TestRouter(t *testing.T) {
	r := &Router{GCS: stubFetcher("gcs"), HTTP: stubFetcher("http"), File: stubFetcher("file")}
	tests := []struct {
		url  string
		want string
	}{
		{"gs://bucket/a.pdf", "gcs"},
		{"https://res.cloudinary.com/x/a.pdf", "http"},
		{"http://localhost/a.pdf", "http"},
		{"file:///tmp/a.pdf", "file"},
		{"./a.pdf", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			data, err := r.Fetch(context.Background(), tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}

	_, err := r.Fetch(context.Background(), "ftp://host/a.pdf")
	assert.Error(t, err)
	_, err = r.Fetch(context.Background(), "")
	assert.Error(t, err)

	_, err = (&Router{File: stubFetcher("file")}).Fetch(context.Background(), "gs://b/o")
	assert.ErrorContains(t, err, "no fetcher")
}
