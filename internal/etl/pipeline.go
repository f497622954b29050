package etl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"football_etl/internal/metrics"
	"football_etl/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrRunInProgress is returned when Run is called while another run is active
var ErrRunInProgress = errors.New("etl run already in progress")

// SnapshotResetter clears the raw snapshot folder before a run
type SnapshotResetter interface {
	Reset() error
}

// Store persists the normalized tables
type Store interface {
	CreateSchema(ctx context.Context) error
	Load(ctx context.Context, tables models.Tables) error
	RowCounts(ctx context.Context) (map[string]int, error)
}

// Reporter writes the derived summary
type Reporter interface {
	Export(ctx context.Context) (int, error)
}

// RunStats describes a completed run
type RunStats struct {
	Extract     *ExtractStats
	Rows        map[string]int
	SummaryRows int
	Duration    time.Duration
}

// Pipeline runs extract, transform, load and report as one full refresh
type Pipeline struct {
	snapshots SnapshotResetter
	extractor *Extractor
	store     Store
	reporter  Reporter

	mu sync.Mutex
}

// NewPipeline wires the run stages together
func NewPipeline(snapshots SnapshotResetter, extractor *Extractor, store Store, reporter Reporter) *Pipeline {
	return &Pipeline{
		snapshots: snapshots,
		extractor: extractor,
		store:     store,
		reporter:  reporter,
	}
}

// Run performs one full refresh. Each stage completes before the next starts.
func (p *Pipeline) Run(ctx context.Context) (*RunStats, error) {
	if !p.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer p.mu.Unlock()

	start := time.Now()
	stats, err := p.run(ctx)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordRun("error", duration.Seconds())
		return stats, err
	}

	stats.Duration = duration
	metrics.RecordRun("success", duration.Seconds())
	log.Info().
		Dur("duration", duration).
		Int("summary_rows", stats.SummaryRows).
		Msg("ETL run complete")
	return stats, nil
}

func (p *Pipeline) run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	log.Info().Msg("Clearing snapshot folder")
	if err := p.snapshots.Reset(); err != nil {
		return stats, p.fail("reset", err)
	}

	log.Info().Msg("Extracting data")
	competitions, memberships, extractStats, err := p.extractor.Extract(ctx)
	stats.Extract = extractStats
	if err != nil {
		return stats, p.fail("extract", err)
	}
	log.Info().
		Int("competitions", extractStats.Competitions).
		Int("team_requests", extractStats.TeamRequests).
		Int("skipped_no_code", extractStats.SkippedNoCode).
		Int("degraded", extractStats.DegradedFetches).
		Int("memberships", extractStats.Memberships).
		Msg("Extraction finished")

	log.Info().Msg("Transforming data")
	tables := Transform(competitions, memberships)
	log.Info().
		Int(models.TableCompetitions, tables.Competitions.Len()).
		Int(models.TableTeams, tables.Teams.Len()).
		Int(models.TableFacts, tables.Facts.Len()).
		Msg("Transformation finished")

	log.Info().Msg("Creating schema")
	if err := p.store.CreateSchema(ctx); err != nil {
		return stats, p.fail("schema", err)
	}

	log.Info().Msg("Loading data")
	if err := p.store.Load(ctx, tables); err != nil {
		return stats, p.fail("load", err)
	}

	log.Info().Msg("Exporting summary")
	summaryRows, err := p.reporter.Export(ctx)
	if err != nil {
		return stats, p.fail("report", err)
	}
	stats.SummaryRows = summaryRows

	rows, err := p.store.RowCounts(ctx)
	if err != nil {
		return stats, p.fail("verify", err)
	}
	stats.Rows = rows
	for table, n := range rows {
		log.Info().Str("table", table).Int("rows", n).Msg("Table row count")
	}

	return stats, nil
}

func (p *Pipeline) fail(stage string, err error) error {
	metrics.RecordError("pipeline", stage)
	log.Error().Err(err).Str("stage", stage).Msg("ETL run failed")
	return fmt.Errorf("%s: %w", stage, err)
}
