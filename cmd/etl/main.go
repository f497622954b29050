package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"football_etl/internal/client"
	"football_etl/internal/config"
	"football_etl/internal/etl"
	"football_etl/internal/report"
	"football_etl/internal/repository"
	"football_etl/internal/scheduler"
	"football_etl/internal/snapshot"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoad()

	// Setup logger
	logFile, err := setupLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	log.Info().Msg("Starting football ETL")
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("db_driver", cfg.DBDriver).
		Msg("Configuration loaded")

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("ETL failed")
		if logFile != nil {
			logFile.Close()
		}
		os.Exit(1)
	}

	log.Info().Msg("ETL shutdown complete")
}

func run(cfg *config.Config) error {
	// Create context that listens for cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	snapshots := snapshot.NewOsStore(cfg.DataDir)
	log.Info().Str("dir", snapshots.Dir()).Msg("Snapshot store ready")

	api := client.NewClient(client.Config{
		BaseURL:        cfg.APIBaseURL,
		APIKey:         cfg.APIKey,
		Timeout:        cfg.APITimeout,
		MaxRetries:     cfg.MaxRetries,
		RateLimitDelay: cfg.RateLimitDelay,
		MaxBackoff:     cfg.MaxBackoff,
	}, snapshots)
	log.Info().Str("base_url", api.BaseURL()).Msg("football-data client initialized")

	db, err := repository.NewDatabase(ctx, repository.Config{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseDSN(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	pipeline := etl.NewPipeline(
		snapshots,
		etl.NewExtractor(api, cfg.StrictFetch),
		db,
		report.NewExporter(db.Facts, cfg.ReportPath),
	)

	sched := scheduler.NewScheduler(scheduler.Config{
		Schedule:        cfg.Schedule,
		RunOnStart:      cfg.RunOnStart,
		MetricsTextfile: cfg.MetricsTextfile,
	}, pipeline)

	if !cfg.Scheduled() {
		return sched.RunOnce(ctx)
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}

	// Keep running until a shutdown signal arrives
	<-ctx.Done()
	log.Info().Msg("Received shutdown signal, gracefully shutting down...")
	sched.Stop()

	return nil
}

// setupLogger configures the zerolog logger. When a log directory is set,
// every record is also written to a file named after the run start time.
func setupLogger(cfg *config.Config) (*os.File, error) {
	var console io.Writer = os.Stdout

	// Pretty console logging in development
	if cfg.IsDevelopment() {
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	var file *os.File
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		name := fmt.Sprintf("football_etl_%s.log", time.Now().Format("20060102_150405"))
		f, err := os.OpenFile(filepath.Join(cfg.LogDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
	}

	if file != nil {
		log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
	}

	// Set log level
	level := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")

	return file, nil
}
