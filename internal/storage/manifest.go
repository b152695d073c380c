package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Entry records the last successful generation of one input.
type Entry struct {
	Input       string
	InputHash   string // SHA-256 of the input content
	OptionsHash string // SHA-256 of the settings that shape the output
	Output      string
	Lines       int
	Sections    int
	GeneratedAt time.Time
}

// Manifest reads and writes generation entries.
type Manifest struct {
	db *sql.DB
}

// NewManifest wraps a database whose schema was created with CreateSchema.
func NewManifest(db *sql.DB) *Manifest {
	return &Manifest{db: db}
}

// OpenManifest opens the database at path and wraps it.
func OpenManifest(path string) (*Manifest, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewManifest(db), nil
}

// Close closes the underlying database.
func (m *Manifest) Close() error {
	return m.db.Close()
}

var entryColumns = []string{
	"input", "input_hash", "options_hash", "output", "lines", "sections", "generated_at",
}

// Lookup returns the entry for input, or nil when there is none.
func (m *Manifest) Lookup(ctx context.Context, input string) (*Entry, error) {
	row := sq.Select(entryColumns...).
		From("generated").
		Where(sq.Eq{"input": input}).
		RunWith(m.db).
		QueryRowContext(ctx)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest entry for %s: %w", input, err)
	}
	return entry, nil
}

// Record writes or replaces the entry for e.Input.
func (m *Manifest) Record(ctx context.Context, e Entry) error {
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = time.Now()
	}

	_, err := sq.Insert("generated").
		Columns(entryColumns...).
		Values(
			e.Input,
			e.InputHash,
			e.OptionsHash,
			e.Output,
			e.Lines,
			e.Sections,
			e.GeneratedAt.UTC().Format(time.RFC3339),
		).
		Options("OR REPLACE").
		RunWith(m.db).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to write manifest entry for %s: %w", e.Input, err)
	}
	return nil
}

// Forget removes the entry for input.
func (m *Manifest) Forget(ctx context.Context, input string) error {
	_, err := sq.Delete("generated").
		Where(sq.Eq{"input": input}).
		RunWith(m.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete manifest entry for %s: %w", input, err)
	}
	return nil
}

// Entries returns every entry ordered by input.
func (m *Manifest) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := sq.Select(entryColumns...).
		From("generated").
		OrderBy("input").
		RunWith(m.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifest entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manifest entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var generatedAt string
	if err := row.Scan(&e.Input, &e.InputHash, &e.OptionsHash, &e.Output, &e.Lines, &e.Sections, &generatedAt); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid generated_at %q: %w", generatedAt, err)
	}
	e.GeneratedAt = t
	return &e, nil
}
