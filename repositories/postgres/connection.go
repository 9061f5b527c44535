package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/config"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// InitSchema initializes the database schema.
//
// The partial unique index on users(email) is load-bearing: it enforces
// "exactly one non-deleted account per email" and arbitrates concurrent
// first-time provisioning.
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Users table
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(100) NOT NULL,
			display_name VARCHAR(100) NOT NULL,
			google_subject VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			lifecycle_state VARCHAR(20) NOT NULL DEFAULT 'active'
				CHECK (lifecycle_state IN ('active', 'deactivated', 'deleted')),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at TIMESTAMP
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_live
			ON users(email) WHERE lifecycle_state <> 'deleted';
		CREATE INDEX IF NOT EXISTS idx_users_google_subject ON users(google_subject);

		-- Contents table
		CREATE TABLE IF NOT EXISTS contents (
			id UUID PRIMARY KEY,
			author VARCHAR(200) NOT NULL,
			title VARCHAR(500) NOT NULL,
			subtitle VARCHAR(1000),
			body TEXT NOT NULL,
			draft BOOLEAN NOT NULL DEFAULT true,
			active BOOLEAN NOT NULL DEFAULT true,
			publish_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_contents_created_at ON contents(created_at);
		CREATE INDEX IF NOT EXISTS idx_contents_publish_at ON contents(publish_at);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
