package app

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"path"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/ViaEstate/feed-ingest/internal/domain"
)

// MediaResolver downloads source images and uploads them to the object
// store under deterministic keys so re-imports overwrite instead of
// duplicating.
type MediaResolver struct {
	fetcher domain.ImageFetcher
	store   domain.BlobStore
	workers int64
}

func NewMediaResolver(f domain.ImageFetcher, s domain.BlobStore, workers int) *MediaResolver {
	if workers <= 0 {
		workers = 4
	}
	return &MediaResolver{fetcher: f, store: s, workers: int64(workers)}
}

// storageKey derives the object key from the source URL, not the bytes:
// hex md5 of the raw URL plus the original extension. The hash never
// fails, so an unparseable URL still yields a stable key with the .jpg
// default.
func storageKey(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	ext := ".jpg"
	if u, err := url.Parse(rawURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return hex.EncodeToString(sum[:]) + ext
}

// Resolve processes an already-truncated URL list with bounded parallel
// fan-out. A failed download or upload drops that image only; the
// surviving public URLs keep feed order.
func (m *MediaResolver) Resolve(ctx context.Context, reference string, urls []string) []string {
	results := make([]string, len(urls))
	sem := semaphore.NewWeighted(m.workers)
	var wg sync.WaitGroup

	for i, u := range urls {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			defer sem.Release(1)

			data, contentType, err := m.fetcher.FetchImage(ctx, src)
			if err != nil {
				log.Warn().Str("ref", reference).Str("url", src).Err(err).Msg("image download failed")
				return
			}
			key := "kyero/" + reference + "/" + storageKey(src)
			public, err := m.store.Upload(ctx, key, data, contentType)
			if err != nil {
				log.Warn().Str("ref", reference).Str("key", key).Err(err).Msg("image upload failed")
				return
			}
			results[i] = public
		}(i, u)
	}
	wg.Wait()

	out := make([]string, 0, len(results))
	for _, r := range results {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
