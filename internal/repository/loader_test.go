package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"football_etl/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SummaryRoundTrip(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	tables := sampleTables()
	require.NoError(t, db.Load(ctx, tables))

	summary, err := db.Facts.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SummaryRow{
		{Competition: "Premier League", NumberOfTeams: 2},
		{Competition: "Primera Division", NumberOfTeams: 1},
	}, summary)

	// Every competition count equals the fact rows referencing its id
	for _, row := range tables.Competitions.Rows {
		n, err := db.Facts.CountByCompetition(ctx, row.ID)
		require.NoError(t, err)

		expected := 0
		for _, fact := range tables.Facts.Rows {
			if fact.CompetitionID == row.ID {
				expected++
			}
		}
		assert.Equal(t, expected, n, "competition %d", row.ID)
	}
}

func TestLoad_EmptyTables(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	require.NoError(t, db.Load(ctx, models.NewTables()))

	summary, err := db.Facts.Summary(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestLoad_AppendOnly(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	tables := models.NewTables()
	tables.Competitions.Append(models.DimCompetition{ID: 1, Name: "League"})
	tables.Teams.Append(models.DimTeam{ID: 10, Name: "Team"})
	tables.Facts.Append(models.FactCompetition{CompetitionID: 1, TeamID: 10})
	require.NoError(t, db.Load(ctx, tables))

	facts := models.NewTables()
	facts.Facts.Append(models.FactCompetition{CompetitionID: 1, TeamID: 10})
	require.NoError(t, db.Load(ctx, facts), "Load appends without clearing")

	count, err := db.Facts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLoad_ForeignKeyViolationRollsBack(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	tables := models.NewTables()
	tables.Competitions.Append(models.DimCompetition{ID: 1, Name: "League"})
	tables.Facts.Append(models.FactCompetition{CompetitionID: 1, TeamID: 404})

	err := db.Load(ctx, tables)
	require.Error(t, err, "Unknown team should violate the foreign key")
	assert.Contains(t, err.Error(), "fact_competitions")

	count, err := db.Competitions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "Failed load should roll back the dimensions too")
}

func TestLoad_PropagatesStorageErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := NewDatabaseFromDB(sqlDB, DriverSQLite)

	tables := models.NewTables()
	tables.Competitions.Append(models.DimCompetition{ID: 1, Name: "League"})

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO dim_competitions (id, name) VALUES ($1, $2)")).
		ExpectExec().
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = db.Load(context.Background(), tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSchema_PropagatesStorageErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := NewDatabaseFromDB(sqlDB, DriverSQLite)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS fact_competitions")).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err = db.CreateSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertQuery(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO fact_competitions (competition_id, team_id) VALUES ($1, $2)",
		insertQuery(models.TableFacts, []string{"competition_id", "team_id"}),
	)
}
