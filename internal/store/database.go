// Package store records refresh runs in PostgreSQL for auditing: which
// report was fetched, when, and what came out of it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database represents the PostgreSQL database connection
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase creates a new database connection
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// EnsureSchema creates the audit table when it does not exist yet
func (db *Database) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS report_runs (
			id            BIGSERIAL PRIMARY KEY,
			pdf_url       TEXT NOT NULL,
			pdf_name      TEXT NOT NULL,
			published_at  TIMESTAMPTZ,
			report_time   TEXT,
			total_rows    INTEGER NOT NULL,
			status_counts JSONB NOT NULL DEFAULT '{}',
			fetched_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	if _, err := db.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create report_runs table: %w", err)
	}
	return nil
}
