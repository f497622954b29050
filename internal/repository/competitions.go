package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"football_etl/internal/models"
)

// CompetitionRepository reads dim_competitions
type CompetitionRepository struct {
	db *Database
}

// GetByID retrieves a competition by its football-data id
func (r *CompetitionRepository) GetByID(ctx context.Context, id int) (*models.DimCompetition, error) {
	query := `SELECT id, name FROM dim_competitions WHERE id = $1`

	var competition models.DimCompetition
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(&competition.ID, &competition.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("competition not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}

	return &competition, nil
}

// List retrieves all competitions ordered by id
func (r *CompetitionRepository) List(ctx context.Context) ([]models.DimCompetition, error) {
	query := `SELECT id, name FROM dim_competitions ORDER BY id`

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	defer rows.Close()

	competitions := []models.DimCompetition{}
	for rows.Next() {
		var competition models.DimCompetition
		if err := rows.Scan(&competition.ID, &competition.Name); err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		competitions = append(competitions, competition)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competitions: %w", err)
	}

	return competitions, nil
}

// Count returns the total number of competitions
func (r *CompetitionRepository) Count(ctx context.Context) (int, error) {
	return r.db.count(ctx, models.TableCompetitions)
}
