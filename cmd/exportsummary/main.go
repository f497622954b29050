// Command exportsummary rewrites the competition summary report from an
// already-loaded database without calling the API.
package main

import (
	"context"
	"flag"
	"time"

	"football_etl/internal/config"
	"football_etl/internal/report"
	"football_etl/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoadStorage()

	output := flag.String("output", cfg.ReportPath, "path of the summary CSV")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseDSN(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// 1. Validate database connectivity
	log.Info().Msg("Validating database health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	// 2. Report what is currently loaded
	counts, err := db.RowCounts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count rows, has the ETL run?")
	}
	for table, n := range counts {
		log.Info().Str("table", table).Int("rows", n).Msg("Table row count")
	}

	// 3. Export the summary
	n, err := report.NewExporter(db.Facts, *output).Export(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to export summary")
	}

	log.Info().Int("rows", n).Str("path", *output).Msg("Summary export complete")
}
