package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	_ "github.com/mattn/go-sqlite3"    // SQLite driver ("sqlite3")
	"github.com/rs/zerolog/log"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Database holds the destination connection and provides access to repositories
type Database struct {
	DB     *sql.DB
	Driver string

	// Repositories
	Competitions *CompetitionRepository
	Teams        *TeamRepository
	Facts        *FactRepository
}

// Config holds database configuration
type Config struct {
	Driver string
	// DSN is the SQLite file path, or a PostgreSQL URL for the pgx driver
	DSN string
}

// NewDatabase opens the destination store and initializes repositories.
// For SQLite the parent directory of the database file is created first.
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	dsn := cfg.DSN

	switch cfg.Driver {
	case DriverSQLite:
		if dir := filepath.Dir(cfg.DSN); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		dsn = cfg.DSN + "?_foreign_keys=on&_busy_timeout=5000"
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqlDB, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// One writer at a time keeps SQLite from reporting "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("driver", cfg.Driver).
		Msg("Successfully connected to database")

	return NewDatabaseFromDB(sqlDB, cfg.Driver), nil
}

// NewDatabaseFromDB wraps an already opened connection
func NewDatabaseFromDB(sqlDB *sql.DB, driver string) *Database {
	db := &Database{
		DB:     sqlDB,
		Driver: driver,
	}

	db.Competitions = &CompetitionRepository{db: db}
	db.Teams = &TeamRepository{db: db}
	db.Facts = &FactRepository{db: db}

	return db
}

// Close closes the database connection
func (db *Database) Close() {
	if db.DB != nil {
		db.DB.Close()
		log.Info().Msg("Database connection closed")
	}
}

// Health checks if the database is reachable
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns connection pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.DB.Stats()
	return map[string]interface{}{
		"open_conns": stat.OpenConnections,
		"in_use":     stat.InUse,
		"idle_conns": stat.Idle,
		"max_conns":  stat.MaxOpenConnections,
	}
}
