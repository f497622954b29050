// Package report exports the competition summary as CSV.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"football_etl/internal/models"

	"github.com/rs/zerolog/log"
)

// Header is the first line of the summary file
var Header = []string{"Competition", "Number_of_Teams"}

// SummarySource runs the aggregate query over the loaded tables
type SummarySource interface {
	Summary(ctx context.Context) ([]models.SummaryRow, error)
}

// Exporter writes the competition summary to a CSV file
type Exporter struct {
	source SummarySource
	path   string
}

// NewExporter creates an exporter writing to path
func NewExporter(source SummarySource, path string) *Exporter {
	return &Exporter{source: source, path: path}
}

// Path returns the report destination
func (e *Exporter) Path() string {
	return e.path
}

// Export runs the summary query and writes the report. An empty result
// produces a header-only file.
func (e *Exporter) Export(ctx context.Context) (int, error) {
	rows, err := e.source.Summary(ctx)
	if err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		log.Warn().Msg("Summary query returned no data")
	} else {
		log.Info().Int("rows", len(rows)).Msg("Summary query returned rows")
	}

	if err := WriteCSV(e.path, rows); err != nil {
		return 0, err
	}

	log.Info().Str("path", e.path).Msg("Summary exported")
	return len(rows), nil
}

// WriteCSV writes rows to path with the summary header, creating the directory
func WriteCSV(path string, rows []models.SummaryRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Competition, strconv.Itoa(row.NumberOfTeams)}); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	return f.Close()
}
