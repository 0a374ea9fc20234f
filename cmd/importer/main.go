package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	goflags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ViaEstate/feed-ingest/internal/adapters/blobstore"
	"github.com/ViaEstate/feed-ingest/internal/adapters/observability"
	"github.com/ViaEstate/feed-ingest/internal/adapters/openai"
	redisad "github.com/ViaEstate/feed-ingest/internal/adapters/redis"
	"github.com/ViaEstate/feed-ingest/internal/app"
	"github.com/ViaEstate/feed-ingest/internal/feed"
	"github.com/ViaEstate/feed-ingest/internal/shared"
	mysqlrepo "github.com/ViaEstate/feed-ingest/internal/storage/mysql"
)

type options struct {
	FeedURL   string `long:"feed-url" description:"Feed URL or local file path (overrides FEED_URL)"`
	MaxImages int    `long:"max-images" description:"Max images per record (overrides FEED_MAX_IMAGES)"`
	DryRun    bool   `long:"dry-run" description:"Fetch, parse and normalize only; no uploads, translations or writes"`
}

func main() {
	_ = godotenv.Load()

	var opts options
	if _, err := goflags.Parse(&opts); err != nil {
		if fe, ok := err.(*goflags.Error); ok && fe.Type == goflags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	if opts.FeedURL != "" {
		cfg.FeedURL = opts.FeedURL
	}
	if opts.MaxImages > 0 {
		cfg.MaxImages = opts.MaxImages
	}
	if cfg.FeedURL == "" {
		log.Fatal().Msg("no feed URL configured")
	}

	log.Info().
		Str("feed", cfg.FeedURL).
		Int("max_images", cfg.MaxImages).
		Strs("locales", cfg.TargetLocales).
		Bool("dry_run", opts.DryRun).
		Msg("importer starting")

	fetcher := feed.NewFetcher(30 * time.Second)

	var svc *app.ImportService
	if opts.DryRun {
		svc = app.NewImportService(fetcher, nil, nil, nil, cfg.FeedURL, cfg.FeedCountry, cfg.MaxImages)
		svc.DryRun = true
	} else {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("db ping ok")

		blob, err := blobstore.New(cfg.BlobBaseURL, cfg.BlobBucket, cfg.BlobToken)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize blob store client")
		}
		translator, err := openai.New(cfg.TranslateBase, cfg.TranslateKey, cfg.TranslateModel, cfg.TranslateRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize translation client")
		}
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cache.Close()

		media := app.NewMediaResolver(blob, blob, cfg.ImageWorkers)
		loc := app.NewLocalizer(translator, cache, cfg.TargetLocales, int(cfg.CacheTTL.Seconds()))
		repo := mysqlrepo.New(db)
		svc = app.NewImportService(fetcher, media, loc, repo, cfg.FeedURL, cfg.FeedCountry, cfg.MaxImages)
	}

	sum, err := svc.Run(ctx)
	if err != nil {
		// unreachable feed or unparseable document
		log.Fatal().Err(err).Msg("import aborted")
	}
	log.Info().
		Int("processed", sum.Processed).
		Int("created", sum.Created).
		Int("persisted", sum.Persisted).
		Int("failed", sum.Failed).
		Int("images", sum.ImagesUploaded).
		Msg("importer done")
}
