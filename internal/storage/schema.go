// Package storage keeps the generation manifest in SQLite: one row per input
// recording the content fingerprint and render settings of its last
// successful generation.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is stored in manifest_metadata.
const SchemaVersion = "1"

const createGeneratedTable = `
CREATE TABLE IF NOT EXISTS generated (
	input        TEXT PRIMARY KEY,
	input_hash   TEXT NOT NULL,
	options_hash TEXT NOT NULL,
	output       TEXT NOT NULL,
	lines        INTEGER NOT NULL DEFAULT 0,
	sections     INTEGER NOT NULL DEFAULT 0,
	generated_at TEXT NOT NULL
)`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS manifest_metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Open opens (or creates) the manifest database at path. ":memory:" gives a
// private in-memory manifest.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}

	// One connection keeps :memory: databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateSchema creates the manifest tables if they do not exist.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"generated", createGeneratedTable},
		{"manifest_metadata", createMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO manifest_metadata (key, value) VALUES ('schema_version', ?)",
		SchemaVersion,
	); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}
