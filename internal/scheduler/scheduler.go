package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"football_etl/internal/etl"
	"football_etl/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Runner performs one full ETL refresh
type Runner interface {
	Run(ctx context.Context) (*etl.RunStats, error)
}

// Scheduler triggers full refreshes on a cron schedule.
// A tick that fires while the previous run is still going is skipped.
type Scheduler struct {
	runner          Runner
	schedule        string
	runOnStart      bool
	metricsTextfile string
	cron            *cron.Cron
	startup         sync.WaitGroup
}

// Config holds scheduler settings
type Config struct {
	Schedule        string
	RunOnStart      bool
	MetricsTextfile string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg Config, runner Runner) *Scheduler {
	logger := cron.PrintfLogger(&log.Logger)
	return &Scheduler{
		runner:          runner,
		schedule:        cfg.Schedule,
		runOnStart:      cfg.RunOnStart,
		metricsTextfile: cfg.MetricsTextfile,
		cron:            cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
	}
}

// Start registers the refresh job and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.schedule, func() {
		log.Info().Msg("Running scheduled refresh...")
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.schedule).
		Msg("Refresh scheduled")

	if s.runOnStart {
		s.startup.Add(1)
		go func() {
			defer s.startup.Done()
			s.RunOnce(ctx)
		}()
	}

	return nil
}

// RunOnce runs the pipeline and logs the outcome. Errors do not stop the schedule.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	_, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, etl.ErrRunInProgress):
		log.Warn().Msg("Previous refresh still running, skipping")
	case err != nil:
		log.Error().Err(err).Msg("Scheduled refresh failed")
	}

	if s.metricsTextfile != "" {
		if werr := metrics.WriteTextfile(s.metricsTextfile); werr != nil {
			log.Warn().Err(werr).Str("path", s.metricsTextfile).Msg("Failed to write metrics textfile")
		}
	}

	return err
}

// Stop stops the cron loop and waits for a running refresh to finish,
// including the one started by RunOnStart
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.startup.Wait()

	log.Info().Msg("Scheduler stopped")
}
