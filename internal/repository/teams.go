package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"football_etl/internal/models"
)

// TeamRepository reads dim_teams
type TeamRepository struct {
	db *Database
}

// GetByID retrieves a team by its football-data id
func (r *TeamRepository) GetByID(ctx context.Context, id int) (*models.DimTeam, error) {
	query := `SELECT id, name FROM dim_teams WHERE id = $1`

	var team models.DimTeam
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams ordered by id
func (r *TeamRepository) List(ctx context.Context) ([]models.DimTeam, error) {
	query := `SELECT id, name FROM dim_teams ORDER BY id`

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []models.DimTeam{}
	for rows.Next() {
		var team models.DimTeam
		if err := rows.Scan(&team.ID, &team.Name); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	return r.db.count(ctx, models.TableTeams)
}
