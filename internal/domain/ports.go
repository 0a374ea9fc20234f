package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// PropertyRepository is the relational upsert target. Writes are keyed by
// the feed reference so re-imports update in place.
type PropertyRepository interface {
	// UpsertProperty reports whether the row was newly created.
	UpsertProperty(ctx context.Context, p Property) (created bool, err error)
	UpsertVariant(ctx context.Context, v LocaleVariant) error
	LogFailure(ctx context.Context, reference, stage, reason string) error
}

// BlobStore is the keyed object store for listing images. Upload has
// insert-or-replace semantics and returns the publicly fetchable URL.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImageFetcher downloads a source image. Returns bytes and content type.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
}

// Translator wraps the external language capability. Both operations are
// rate-limited, fallible and cost-bearing; callers must treat failures as
// soft.
type Translator interface {
	// DetectLanguage returns a lowercase two-letter locale code.
	DetectLanguage(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, targetLocale, sourceLocale string) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
