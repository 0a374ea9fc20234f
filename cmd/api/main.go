package main

import (
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ViaEstate/feed-ingest/internal/adapters/blobstore"
	"github.com/ViaEstate/feed-ingest/internal/adapters/httpserver"
	"github.com/ViaEstate/feed-ingest/internal/adapters/observability"
	"github.com/ViaEstate/feed-ingest/internal/adapters/openai"
	redisad "github.com/ViaEstate/feed-ingest/internal/adapters/redis"
	"github.com/ViaEstate/feed-ingest/internal/app"
	"github.com/ViaEstate/feed-ingest/internal/feed"
	"github.com/ViaEstate/feed-ingest/internal/scheduler"
	"github.com/ViaEstate/feed-ingest/internal/shared"
	mysqlrepo "github.com/ViaEstate/feed-ingest/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	blob, err := blobstore.New(cfg.BlobBaseURL, cfg.BlobBucket, cfg.BlobToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob store client")
	}
	translator, err := openai.New(cfg.TranslateBase, cfg.TranslateKey, cfg.TranslateModel, cfg.TranslateRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize translation client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	repo := mysqlrepo.New(db)
	fetcher := feed.NewFetcher(30 * time.Second)
	media := app.NewMediaResolver(blob, blob, cfg.ImageWorkers)
	loc := app.NewLocalizer(translator, cache, cfg.TargetLocales, int(cfg.CacheTTL.Seconds()))
	importer := app.NewImportService(fetcher, media, loc, repo, cfg.FeedURL, cfg.FeedCountry, cfg.MaxImages)

	if cfg.ImportSchedule != "" {
		sched := scheduler.New(cfg.ImportSchedule, importer)
		if err := sched.Start(); err != nil {
			log.Fatal().Err(err).Msg("invalid IMPORT_SCHEDULE")
		}
		defer sched.Stop()
	}

	srv := httpserver.New(15 * time.Minute)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&httpserver.Handlers{Importer: importer})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("admin API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
