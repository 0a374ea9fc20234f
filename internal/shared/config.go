package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	FeedURL     string
	FeedCountry string
	MaxImages   int

	BlobBaseURL string
	BlobBucket  string
	BlobToken   string

	TranslateBase  string
	TranslateKey   string
	TranslateModel string
	TranslateRPS   int

	TargetLocales []string
	ImageWorkers  int

	ImportSchedule string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/viaestate?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 86400)) * time.Second,

		FeedURL:     env("FEED_URL", ""),
		FeedCountry: env("FEED_COUNTRY", "Spain"),
		MaxImages:   atoi("FEED_MAX_IMAGES", 10),

		BlobBaseURL: env("BLOB_BASE_URL", ""),
		BlobBucket:  env("BLOB_BUCKET", "property-images"),
		BlobToken:   env("BLOB_TOKEN", ""),

		TranslateBase:  env("TRANSLATE_BASE_URL", "https://api.openai.com/v1"),
		TranslateKey:   env("TRANSLATE_API_KEY", ""),
		TranslateModel: env("TRANSLATE_MODEL", "gpt-4o-mini"),
		TranslateRPS:   atoi("TRANSLATE_RPS", 5),

		TargetLocales: splitCSV(env("TARGET_LOCALES", "en,sv,nb,da,fi")),
		ImageWorkers:  atoi("IMAGE_WORKERS", 4),

		ImportSchedule: env("IMPORT_SCHEDULE", ""),
	}
	if c.FeedURL == "" {
		log.Warn().Msg("FEED_URL is empty")
	}
	if c.TranslateKey == "" {
		log.Warn().Msg("TRANSLATE_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(strings.ToLower(p)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
