package feed_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ViaEstate/feed-ingest/internal/feed"
)

func TestFetch_HTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<root><property/></root>"))
	}))
	defer ts.Close()

	f := feed.NewFetcher(5 * time.Second)
	got, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != "<root><property/></root>" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		_, _ = w.Write([]byte("moved"))
	}))
	defer target.Close()

	f := feed.NewFetcher(5 * time.Second)
	got, err := f.Fetch(context.Background(), target.URL+"/old")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != "moved" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestFetch_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	f := feed.NewFetcher(5 * time.Second)
	if _, err := f.Fetch(context.Background(), ts.URL); !errors.Is(err, feed.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetch_LocalFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "feed.xml")
	if err := os.WriteFile(p, []byte("<root/>"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := feed.NewFetcher(5 * time.Second)
	for _, in := range []string{p, "file://" + p} {
		got, err := f.Fetch(context.Background(), in)
		if err != nil {
			t.Fatalf("fetch %q: %v", in, err)
		}
		if string(got) != "<root/>" {
			t.Fatalf("unexpected body for %q: %q", in, got)
		}
	}

	if _, err := f.Fetch(context.Background(), filepath.Join(dir, "missing.xml")); !errors.Is(err, feed.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for missing file, got %v", err)
	}
}
