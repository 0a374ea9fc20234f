package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/ViaEstate/feed-ingest/internal/domain"
)

type Runner interface {
	Run(ctx context.Context) (domain.RunSummary, error)
}

// Scheduler runs imports on a cron expression (e.g. "0 3 * * *" for a
// nightly pull). Overlapping runs are skipped, not queued.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	runner  Runner
	running bool
}

func New(spec string, r Runner) *Scheduler {
	return &Scheduler{cron: cron.New(), spec: spec, runner: r}
}

func (s *Scheduler) Start() error {
	inFlight := make(chan struct{}, 1)
	_, err := s.cron.AddFunc(s.spec, func() {
		select {
		case inFlight <- struct{}{}:
			defer func() { <-inFlight }()
		default:
			log.Warn().Msg("scheduled import skipped, previous run still in flight")
			return
		}
		log.Info().Str("schedule", s.spec).Msg("scheduled import starting")
		sum, err := s.runner.Run(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("scheduled import failed")
			return
		}
		log.Info().
			Int("processed", sum.Processed).
			Int("persisted", sum.Persisted).
			Int("failed", sum.Failed).
			Msg("scheduled import completed")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.running = true
	log.Info().Str("schedule", s.spec).Msg("import scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	if s.running {
		s.cron.Stop()
		s.running = false
	}
}
