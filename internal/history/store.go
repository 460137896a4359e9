// Package history keeps a durable ledger of pipeline runs in SQLite so
// consecutive executions can be inspected from the CLI.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	apperrors "aurelion/internal/errors"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for the run ledger.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run ledger at the given path. Applies the
// required pragmas and schema automatically; safe to call repeatedly.
// Failures carry CodeHistoryUnavailable so callers can degrade to
// running without the ledger.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.Wrap("history", apperrors.CodeHistoryUnavailable, "failed to create database directory", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, apperrors.Wrap("history", apperrors.CodeHistoryUnavailable, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.Wrap("history", apperrors.CodeHistoryUnavailable, "failed to connect to database", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, apperrors.Wrap("history", apperrors.CodeHistoryUnavailable, "failed to apply pragmas", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, apperrors.Wrap("history", apperrors.CodeHistoryUnavailable, "failed to apply schema", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
