// Package repository persists the run ledger: runs, per-document outcomes
// and exported records.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN          string // sqlite file path, ":memory:", or postgres:// URL
	MaxOpenConns int
	DialTimeout  time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	status           TEXT NOT NULL,
	started_at       TEXT NOT NULL,
	finished_at      TEXT NOT NULL DEFAULT '',
	documents        INTEGER NOT NULL DEFAULT 0,
	concatenated     INTEGER NOT NULL DEFAULT 0,
	cross_duplicates INTEGER NOT NULL DEFAULT 0,
	rejected_invalid INTEGER NOT NULL DEFAULT 0,
	exported         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS documents (
	id                   TEXT PRIMARY KEY,
	run_id               TEXT NOT NULL,
	position             INTEGER NOT NULL,
	source_path          TEXT NOT NULL,
	name                 TEXT NOT NULL,
	format               TEXT NOT NULL,
	hash_hex             TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL,
	raw_owners           INTEGER NOT NULL DEFAULT 0,
	valid_owners         INTEGER NOT NULL DEFAULT 0,
	table_rows           INTEGER NOT NULL DEFAULT 0,
	strategy             TEXT NOT NULL DEFAULT '',
	merged               INTEGER NOT NULL DEFAULT 0,
	dropped_structural   INTEGER NOT NULL DEFAULT 0,
	dropped_contaminated INTEGER NOT NULL DEFAULT 0,
	duplicates           INTEGER NOT NULL DEFAULT 0,
	kept                 INTEGER NOT NULL DEFAULT 0,
	error_message        TEXT NOT NULL DEFAULT '',
	started_at           TEXT NOT NULL,
	finished_at          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS documents_run_idx ON documents (run_id, position);

CREATE TABLE IF NOT EXISTS records (
	run_id          TEXT NOT NULL,
	position        INTEGER NOT NULL,
	department      TEXT NOT NULL,
	commune         TEXT NOT NULL,
	prefix          TEXT NOT NULL,
	section         TEXT NOT NULL,
	plot_number     TEXT NOT NULL,
	area_ha         TEXT NOT NULL,
	area_a          TEXT NOT NULL,
	area_ca         TEXT NOT NULL,
	right_type      TEXT NOT NULL,
	designation     TEXT NOT NULL,
	surname         TEXT NOT NULL,
	given_name      TEXT NOT NULL,
	registry_number TEXT NOT NULL,
	street          TEXT NOT NULL,
	postal_code     TEXT NOT NULL,
	city            TEXT NOT NULL,
	unique_id       TEXT NOT NULL,
	source_document TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// IsPostgres reports whether dsn addresses a postgres server.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the ledger database and creates the schema. Postgres goes
// through a pgx pool; anything else is a sqlite path.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	var db *sqlx.DB
	if IsPostgres(cfg.DSN) {
		logger.Info("repository.connect", "driver", "pgx")
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("repository.connect.failed", "error", err)
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			pc.MaxConns = int32(cfg.MaxOpenConns)
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "cadastre-extractor"

		dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("repository.connect.failed", "error", err)
			return nil, fmt.Errorf("connect: %w", err)
		}
		db = sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
	} else {
		logger.Info("repository.connect", "driver", "sqlite", "path", cfg.DSN)
		var err error
		db, err = sqlx.Open("sqlite", cfg.DSN+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one writer; also keeps ":memory:" on a single connection
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	logger.Info("repository.connect.ok")
	return db, nil
}

// Close closes the database connections gracefully.
func Close(db *sqlx.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.Close(); err != nil {
		logger.Error("repository.close.failed", "error", err)
	}
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }
