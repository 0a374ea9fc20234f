package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrUnavailable means the feed could not be retrieved at all. There is no
// per-record fallback for a missing feed; callers abort the run.
var ErrUnavailable = errors.New("feed: unavailable")

type Fetcher struct {
	hc *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// redirects are followed by the default transport policy
	return &Fetcher{hc: &http.Client{Timeout: timeout}}
}

// Fetch retrieves the raw feed bytes. Accepts http(s) URLs, file:// URLs
// and bare filesystem paths.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if p, ok := strings.CutPrefix(rawURL, "file://"); ok {
		return readLocal(p)
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return readLocal(rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	req.Header.Set("User-Agent", "viaestate-feed-ingest/1.0")

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return b, nil
}

func readLocal(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return b, nil
}
