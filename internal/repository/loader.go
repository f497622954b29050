package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"football_etl/internal/metrics"
	"football_etl/internal/models"

	"github.com/rs/zerolog/log"
)

// Load appends the three tables in dependency order: competitions, teams,
// then facts. All rows go in one transaction; any failure rolls back the
// whole load. Load never clears existing rows, call CreateSchema first.
func (db *Database) Load(ctx context.Context, tables models.Tables) error {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer tx.Rollback()

	if err := appendRows(ctx, tx, tables.Competitions); err != nil {
		return err
	}
	if err := appendRows(ctx, tx, tables.Teams); err != nil {
		return err
	}
	if err := appendRows(ctx, tx, tables.Facts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load: %w", err)
	}

	return nil
}

func appendRows[R models.Row](ctx context.Context, tx *sql.Tx, table *models.Table[R]) error {
	start := time.Now()

	stmt, err := tx.PrepareContext(ctx, insertQuery(table.Name, table.Columns))
	if err != nil {
		metrics.RecordDBQuery("insert", table.Name, "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to prepare insert into %s: %w", table.Name, err)
	}
	defer stmt.Close()

	for i, row := range table.Rows {
		if _, err := stmt.ExecContext(ctx, row.Values()...); err != nil {
			metrics.RecordDBQuery("insert", table.Name, "error", time.Since(start).Seconds())
			return fmt.Errorf("failed to insert row %d into %s: %w", i, table.Name, err)
		}
	}

	metrics.RecordDBQuery("insert", table.Name, "success", time.Since(start).Seconds())
	metrics.SetRowsLoaded(table.Name, table.Len())

	log.Debug().
		Str("table", table.Name).
		Int("rows", table.Len()).
		Msg("Rows appended")

	return nil
}

// insertQuery builds a positional INSERT understood by both sqlite3 and pgx
func insertQuery(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
}
