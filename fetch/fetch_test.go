package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"obsync/common"
	"obsync/config"
)

func newClient(t *testing.T, cfg config.FetchConfig) *Client {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return New(&cfg, zaptest.NewLogger(t))
}

func TestClient_FetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "obsync-test" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer s3cr3t" {
			t.Errorf("Authorization = %q", got)
		}
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("payload"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newClient(t, config.FetchConfig{UserAgent: "obsync-test", Token: "s3cr3t"})

	data, err := c.Fetch(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Fetch() = %q, want payload", data)
	}

	_, err = c.Fetch(context.Background(), srv.URL+"/missing")
	var fe *common.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Fetch() error = %v, want FetchError", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", fe.Status)
	}
	if !errors.Is(err, common.ErrFetch) {
		t.Error("error does not match ErrFetch")
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newClient(t, config.FetchConfig{Timeout: 50 * time.Millisecond})
	_, err := c.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, common.ErrFetch) {
		t.Fatalf("Fetch() error = %v, want fetch error", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Fetch() error = %v, want deadline exceeded", err)
	}
}

func TestClient_FetchLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "img_pos01.json")
	if err := os.WriteFile(name, []byte(`[{"pos":"0"}]`), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	c := newClient(t, config.FetchConfig{})
	for _, u := range []string{name, "file://" + filepath.ToSlash(name)} {
		data, err := c.Fetch(context.Background(), u)
		if err != nil {
			t.Fatalf("Fetch(%s) error = %v", u, err)
		}
		if string(data) != `[{"pos":"0"}]` {
			t.Errorf("Fetch(%s) = %q", u, data)
		}
	}

	if _, err := c.Fetch(context.Background(), filepath.Join(dir, "absent.json")); !errors.Is(err, common.ErrFetch) {
		t.Errorf("Fetch(absent) error = %v, want fetch error", err)
	}
	if _, err := c.Fetch(context.Background(), "ftp://example.org/x"); !errors.Is(err, common.ErrFetch) {
		t.Errorf("Fetch(ftp) error = %v, want fetch error", err)
	}
}

func TestClient_FetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown; charset=iso-8859-1")
		// "Café" in latin-1
		w.Write([]byte{'#', ' ', 'C', 'a', 'f', 0xe9})
	}))
	defer srv.Close()

	c := newClient(t, config.FetchConfig{})
	text, err := c.FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText() error = %v", err)
	}
	if text != "# Café" {
		t.Errorf("FetchText() = %q, want %q", text, "# Café")
	}
}

func TestClient_Cache(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := int(status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	cacheDir := filepath.Join(t.TempDir(), "cache")
	c := newClient(t, config.FetchConfig{CacheDir: cacheDir})

	if _, err := c.Fetch(context.Background(), srv.URL+"/story/01.md"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatalf("cache dir was not created: %v", err)
	}
	if len(entries) != 1 || strings.HasPrefix(entries[0].Name(), ".") {
		t.Fatalf("unexpected cache content: %v", entries)
	}

	status.Store(http.StatusBadGateway)
	data, err := c.Fetch(context.Background(), srv.URL+"/story/01.md")
	if err != nil {
		t.Fatalf("Fetch() with cached copy error = %v", err)
	}
	if string(data) != "fresh" {
		t.Errorf("Fetch() = %q, want cached copy", data)
	}

	// missing document is reported even when cached copy exists
	status.Store(http.StatusNotFound)
	var fe *common.FetchError
	if _, err := c.Fetch(context.Background(), srv.URL+"/story/01.md"); !errors.As(err, &fe) || fe.Status != http.StatusNotFound {
		t.Errorf("Fetch() of removed url error = %v, want 404 fetch error", err)
	}
	status.Store(http.StatusBadGateway)

	if _, err := c.Fetch(context.Background(), srv.URL+"/story/02.md"); !errors.Is(err, common.ErrFetch) {
		t.Errorf("Fetch() of uncached url error = %v, want fetch error", err)
	}
}

func TestFunc(t *testing.T) {
	f := Func(func(_ context.Context, url string) ([]byte, error) {
		return []byte("text for " + url), nil
	})
	text, err := f.FetchText(context.Background(), "a")
	if err != nil {
		t.Fatalf("FetchText() error = %v", err)
	}
	if text != "text for a" {
		t.Errorf("FetchText() = %q", text)
	}
}
