// Package db opens the task store. A DATABASE_URL selects hosted
// postgres; without one the app falls back to a local sqlite file,
// mirroring the dev/prod split of the deployment environment.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/tareas-web/appserver/config"
	_ "modernc.org/sqlite"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"

	defaultPingTimeout  = 5 * time.Second
	defaultConnMaxIdle  = 2 * time.Minute
	defaultConnMaxLife  = 30 * time.Minute
	defaultMaxIdleConns = 5
	defaultMaxOpenConns = 25
)

// Open connects to the configured store, verifies the schema and
// bootstraps it on first run. Failures here are fatal at process
// startup only; steady-state store errors surface per request.
func Open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	driver, dsn := driverSQLite, cfg.SQLitePath
	if cfg.DatabaseURL != "" {
		driver, dsn = driverPostgres, cfg.DatabaseURL
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}

	if driver == driverSQLite {
		// sqlite serializes writers itself; a single connection avoids
		// SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	} else {
		db.SetConnMaxIdleTime(defaultConnMaxIdle)
		db.SetConnMaxLifetime(defaultConnMaxLife)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetMaxOpenConns(defaultMaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging %s store: %w", driver, err)
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// ensureSchema probes for the accounts table and creates the schema
// when the probe fails, so a fresh database works without a manual
// migration step. Hosted postgres deployments still run versioned
// migrations via the migrate command.
func ensureSchema(ctx context.Context, db *sql.DB, driver string) error {
	rows, err := db.QueryContext(ctx, `SELECT 1 FROM accounts LIMIT 1`)
	if err == nil {
		return rows.Close()
	}

	statements := schemaSQLite
	if driver == driverPostgres {
		statements = schemaPostgres
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrapping schema: %w", err)
		}
	}
	return nil
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id SERIAL PRIMARY KEY,
		username VARCHAR(80) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id SERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		due_date DATE,
		category VARCHAR(50) NOT NULL DEFAULT 'work',
		account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE RESTRICT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_account_id ON tasks(account_id)`,
}

var schemaSQLite = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		due_date DATE,
		category TEXT NOT NULL DEFAULT 'work',
		account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE RESTRICT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_account_id ON tasks(account_id)`,
}
