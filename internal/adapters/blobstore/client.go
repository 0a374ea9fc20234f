// internal/adapters/blobstore/client.go
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ViaEstate/feed-ingest/internal/adapters/observability"
)

var ErrUploadFailed = errors.New("blobstore: upload failed")

// Client talks to the hosted object-store API. Uploads carry upsert
// semantics (overwrite-if-exists) so re-imports never duplicate storage.
// It also downloads source images, with a tighter timeout than the feed
// fetch so one slow host cannot stall a record for long.
type Client struct {
	base   string // e.g. https://<project>.supabase.co/storage/v1
	bucket string
	token  string
	hc     *http.Client // uploads
	dl     *http.Client // source image downloads
}

func New(base, bucket, token string) (*Client, error) {
	if base == "" || bucket == "" {
		return nil, fmt.Errorf("base URL and bucket are required")
	}
	return &Client{
		base:   strings.TrimSuffix(base, "/"),
		bucket: bucket,
		token:  token,
		hc:     &http.Client{Timeout: 30 * time.Second},
		dl:     &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Upload writes data under key with overwrite-if-exists semantics and
// returns the publicly resolvable URL. Transient 5xx responses are retried
// a bounded number of times.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	endpoint := fmt.Sprintf("%s/object/%s/%s", c.base, c.bucket, key)

	var lastErr error
	for i := 0; i < 3; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-upsert", "true")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			if i < 2 && sleepCtx(ctx, time.Duration(i+1)*300*time.Millisecond) {
				continue
			}
			return "", lastErr
		}
		observability.ObserveExternal("blobstore", "upload", resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return c.PublicURL(key), nil

		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode)
			if i < 2 && sleepCtx(ctx, time.Duration(i+1)*300*time.Millisecond) {
				continue
			}
			return "", lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return "", lastErr
}

// PublicURL resolves a stored key to its publicly fetchable URL.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.base, c.bucket, key)
}

// FetchImage downloads one source image. Failures here are soft for the
// record; callers drop the image and move on.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.dl.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, "", fmt.Errorf("image fetch: status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return b, resp.Header.Get("Content-Type"), nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
