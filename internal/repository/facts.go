package repository

import (
	"context"
	"fmt"
	"time"

	"football_etl/internal/metrics"
	"football_etl/internal/models"
)

// FactRepository reads fact_competitions
type FactRepository struct {
	db *Database
}

// Count returns the total number of membership rows
func (r *FactRepository) Count(ctx context.Context) (int, error) {
	return r.db.count(ctx, models.TableFacts)
}

// CountByCompetition returns the number of membership rows referencing a competition
func (r *FactRepository) CountByCompetition(ctx context.Context, competitionID int) (int, error) {
	query := `SELECT COUNT(*) FROM fact_competitions WHERE competition_id = $1`

	var count int
	if err := r.db.DB.QueryRowContext(ctx, query, competitionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count memberships for competition %d: %w", competitionID, err)
	}

	return count, nil
}

// Summary counts memberships per competition name, largest first
func (r *FactRepository) Summary(ctx context.Context) ([]models.SummaryRow, error) {
	query := `
		SELECT c.name AS Competition, COUNT(f.team_id) AS Number_of_Teams
		FROM dim_competitions c
		JOIN fact_competitions f ON c.id = f.competition_id
		GROUP BY c.name
		ORDER BY COUNT(f.team_id) DESC, c.name
	`

	start := time.Now()
	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		metrics.RecordDBQuery("summary", models.TableFacts, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer rows.Close()

	summary := []models.SummaryRow{}
	for rows.Next() {
		var row models.SummaryRow
		if err := rows.Scan(&row.Competition, &row.NumberOfTeams); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary = append(summary, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary: %w", err)
	}

	metrics.RecordDBQuery("summary", models.TableFacts, "success", time.Since(start).Seconds())
	return summary, nil
}

// count returns the row count of one of the destination tables
func (db *Database) count(ctx context.Context, table string) (int, error) {
	switch table {
	case models.TableCompetitions, models.TableTeams, models.TableFacts:
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var count int
	if err := db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	return count, nil
}

// RowCounts returns the row count of every destination table
func (db *Database) RowCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, 3)
	for _, table := range []string{models.TableCompetitions, models.TableTeams, models.TableFacts} {
		n, err := db.count(ctx, table)
		if err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}
