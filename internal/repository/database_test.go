package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"football_etl/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests run against a throwaway SQLite file per test

func setupTestDB(t *testing.T) (*Database, context.Context) {
	t.Helper()
	ctx := context.Background()

	cfg := Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "db", "football_data_test.sqlite"),
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to open test database")

	require.NoError(t, db.CreateSchema(ctx), "Failed to create schema")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func sampleTables() models.Tables {
	tables := models.NewTables()
	tables.Competitions.Append(models.DimCompetition{ID: 2021, Name: "Premier League"})
	tables.Competitions.Append(models.DimCompetition{ID: 2014, Name: "Primera Division"})
	tables.Teams.Append(models.DimTeam{ID: 57, Name: "Arsenal FC"})
	tables.Teams.Append(models.DimTeam{ID: 65, Name: "Manchester City FC"})
	tables.Teams.Append(models.DimTeam{ID: 86, Name: "Real Madrid CF"})
	tables.Facts.Append(models.FactCompetition{CompetitionID: 2021, TeamID: 57})
	tables.Facts.Append(models.FactCompetition{CompetitionID: 2021, TeamID: 65})
	tables.Facts.Append(models.FactCompetition{CompetitionID: 2014, TeamID: 86})
	return tables
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.Equal(t, 1, stats["max_conns"], "SQLite should be limited to one connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.DB.PingContext(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(context.Background(), Config{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestCreateSchema_Idempotent(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	require.NoError(t, db.Load(ctx, sampleTables()))
	require.NoError(t, db.CreateSchema(ctx), "Recreating over existing tables should succeed")

	counts, err := db.RowCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		models.TableCompetitions: 0,
		models.TableTeams:        0,
		models.TableFacts:        0,
	}, counts, "Drop-and-create should leave empty tables")
}

func TestCreateSchema_PrimaryKeys(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	tables := models.NewTables()
	tables.Teams.Append(models.DimTeam{ID: 1, Name: "Team A"})
	tables.Teams.Append(models.DimTeam{ID: 1, Name: "Team A"})

	err := db.Load(ctx, tables)
	assert.Error(t, err, "dim_teams.id should be a primary key")

	tables = models.NewTables()
	tables.Competitions.Append(models.DimCompetition{ID: 1, Name: "A"})
	tables.Competitions.Append(models.DimCompetition{ID: 1, Name: "B"})

	err = db.Load(ctx, tables)
	assert.Error(t, err, "dim_competitions.id should be a primary key")
}
