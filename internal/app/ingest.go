package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ViaEstate/feed-ingest/internal/adapters/observability"
	"github.com/ViaEstate/feed-ingest/internal/domain"
	"github.com/ViaEstate/feed-ingest/internal/feed"
)

// FeedSource retrieves the raw feed bytes.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageResolver turns a record's source image URLs into stored public URLs.
type ImageResolver interface {
	Resolve(ctx context.Context, reference string, urls []string) []string
}

// VariantProducer yields the per-locale title/description variants.
type VariantProducer interface {
	Variants(ctx context.Context, reference, title, description string) []domain.LocaleVariant
}

// ImportService drives one feed import end to end. Records are processed
// strictly sequentially; fan-out only happens inside a record. A failure
// at any stage skips that record only.
type ImportService struct {
	source FeedSource
	media  ImageResolver
	loc    VariantProducer
	repo   domain.PropertyRepository

	feedURL   string
	country   string
	maxImages int

	// DryRun fetches, parses and normalizes but performs no uploads,
	// translations or writes.
	DryRun bool
}

func NewImportService(src FeedSource, media ImageResolver, loc VariantProducer, repo domain.PropertyRepository, feedURL, country string, maxImages int) *ImportService {
	if maxImages <= 0 {
		maxImages = 10
	}
	return &ImportService{
		source:    src,
		media:     media,
		loc:       loc,
		repo:      repo,
		feedURL:   feedURL,
		country:   country,
		maxImages: maxImages,
	}
}

// Run executes the import. Only an unreachable or unparseable feed is
// fatal; everything else is absorbed at record granularity and reported
// through the summary.
func (s *ImportService) Run(ctx context.Context) (domain.RunSummary, error) {
	var sum domain.RunSummary

	raw, err := s.source.Fetch(ctx, s.feedURL)
	if err != nil {
		return sum, err
	}
	records, err := feed.Parse(raw)
	if err != nil {
		return sum, err
	}
	log.Info().Int("records", len(records)).Str("url", s.feedURL).Msg("feed parsed")

	for i, rec := range records {
		sum.Processed++
		prop := normalizeRecord(i, rec, s.country)

		if s.DryRun {
			log.Info().Str("ref", prop.Reference).Str("type", string(prop.Type)).Int64("price", prop.Price).Msg("dry-run: normalized")
			continue
		}

		urls := capImages(rec.Images, s.maxImages)
		prop.Images = s.media.Resolve(ctx, prop.Reference, urls)
		sum.ImagesUploaded += len(prop.Images)
		observability.ObserveImages(len(prop.Images))

		variants := s.loc.Variants(ctx, prop.Reference, prop.Title, prop.Description)

		created, err := s.repo.UpsertProperty(ctx, prop)
		if err != nil {
			s.recordFailure(ctx, &sum, i, prop.Reference, "persist", err)
			continue
		}
		if err := s.upsertVariants(ctx, variants); err != nil {
			s.recordFailure(ctx, &sum, i, prop.Reference, "persist_i18n", err)
			continue
		}

		sum.Persisted++
		if created {
			sum.Created++
		}
		sum.References = append(sum.References, prop.Reference)
		observability.ObserveRecord("persisted")
		log.Info().Str("ref", prop.Reference).Bool("created", created).Int("images", len(prop.Images)).Msg("record persisted")
	}

	log.Info().
		Int("processed", sum.Processed).
		Int("created", sum.Created).
		Int("persisted", sum.Persisted).
		Int("failed", sum.Failed).
		Int("images", sum.ImagesUploaded).
		Msg("import finished")
	return sum, nil
}

func (s *ImportService) upsertVariants(ctx context.Context, vs []domain.LocaleVariant) error {
	for _, v := range vs {
		if err := s.repo.UpsertVariant(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *ImportService) recordFailure(ctx context.Context, sum *domain.RunSummary, idx int, ref, stage string, err error) {
	sum.Failed++
	observability.ObserveRecord("failed")
	log.Error().Int("index", idx).Str("ref", ref).Str("stage", stage).Err(err).Msg("record failed")
	if lerr := s.repo.LogFailure(ctx, ref, stage, err.Error()); lerr != nil {
		log.Warn().Str("ref", ref).Err(lerr).Msg("failure log write failed")
	}
}
