package repository

import (
	"context"
	"fmt"
	"time"

	"football_etl/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Facts reference both dimensions, so they are dropped first and created last.
var dropStatements = []string{
	`DROP TABLE IF EXISTS fact_competitions`,
	`DROP TABLE IF EXISTS dim_teams`,
	`DROP TABLE IF EXISTS dim_competitions`,
}

var createStatements = []string{
	`CREATE TABLE dim_competitions (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE dim_teams (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE fact_competitions (
		competition_id INTEGER NOT NULL REFERENCES dim_competitions(id),
		team_id INTEGER NOT NULL REFERENCES dim_teams(id)
	)`,
	`CREATE INDEX idx_fact_competitions_competition_id ON fact_competitions(competition_id)`,
}

// CreateSchema drops the three destination tables if present and creates them
// fresh. Existing rows are lost; this is a full refresh, not a migration.
func (db *Database) CreateSchema(ctx context.Context) error {
	start := time.Now()

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range append(append([]string{}, dropStatements...), createStatements...) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			metrics.RecordDBQuery("schema", "all", "error", time.Since(start).Seconds())
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBQuery("schema", "all", "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to commit schema: %w", err)
	}

	metrics.RecordDBQuery("schema", "all", "success", time.Since(start).Seconds())
	log.Info().Dur("duration", time.Since(start)).Msg("Destination tables recreated")

	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
