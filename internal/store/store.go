// Package store persists solve runs, their placements, and authored
// compatibility data in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/hexwfc/internal/logger"
)

var (
	ErrRunNotFound    = errors.New("store: run not found")
	ErrCompatNotFound = errors.New("store: compatibility data not found")
)

// Store wraps the database connection.
type Store struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
	log     *slog.Logger
}

// OpenSQLite opens or creates the SQLite database at path.
func OpenSQLite(path string) (*Store, error) {
	return Open(DefaultConfig(path))
}

// Open connects to the configured database and runs migrations.
func Open(cfg Config) (*Store, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("store: sqlite path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, ok := dialect.(*PostgresDialect); ok {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	} else {
		// One writer keeps WAL pragmas and busy handling predictable.
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	s := &Store{db: db, dialect: dialect, qb: NewQueryBuilder(dialect), log: logger.Component("store")}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	s.log.Debug("store opened", "driver", dialect.DriverName())
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the active dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed BIGINT NOT NULL,
			tier INTEGER NOT NULL,
			catalog_hash TEXT NOT NULL DEFAULT '',
			success INTEGER NOT NULL DEFAULT 0,
			placed INTEGER NOT NULL DEFAULT 0,
			ignored INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			clusters INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS assignments (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			tier INTEGER NOT NULL,
			layer INTEGER NOT NULL,
			q INTEGER NOT NULL,
			r INTEGER NOT NULL,
			part INTEGER NOT NULL DEFAULT 0,
			tile TEXT NOT NULL,
			rotation INTEGER NOT NULL,
			inverted INTEGER NOT NULL DEFAULT 0,
			cluster TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, tier, layer, q, r, part)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_assignments_run ON assignments(run_id, seq)`,

		`CREATE TABLE IF NOT EXISTS compat (
			kind TEXT NOT NULL,
			catalog_hash TEXT NOT NULL,
			tile_count INTEGER NOT NULL DEFAULT 0,
			data {{blob}} NOT NULL,
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (kind, catalog_hash)
		)`,
	}

	for _, m := range migrations {
		m = s.qb.Schema(m)
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
