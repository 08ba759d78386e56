package keymap

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/agentic-research/jsonshape/api"
	_ "modernc.org/sqlite"
)

const keymapSchema = `
CREATE TABLE IF NOT EXISTS keymap (
	seq      INTEGER NOT NULL,
	alias    TEXT PRIMARY KEY,
	long_key TEXT NOT NULL
);
`

// SQLiteStore keeps the keymap in a SQLite table, one row per alias, with
// seq recording entry order.
type SQLiteStore struct {
	path string
}

// NewSQLiteStore returns a store backed by the database at dbPath. The file
// is created on first Save.
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{path: dbPath}
}

func (s *SQLiteStore) Location() string { return s.path }

// Load reads all entries in seq order. A database file that does not exist
// or has no keymap table reports ErrNotFound.
func (s *SQLiteStore) Load() ([]Entry, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %v", api.ErrIO, s.path, err)
	}
	defer func() { _ = db.Close() }()

	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'keymap'`).Scan(&n); err != nil {
		return nil, fmt.Errorf("%w: inspect %s: %v", api.ErrIO, s.path, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s has no keymap table", ErrNotFound, s.path)
	}

	rows, err := db.Query(`SELECT alias, long_key FROM keymap ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query keymap: %v", api.ErrIO, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Alias, &e.Key); err != nil {
			return nil, fmt.Errorf("%w: scan keymap row: %v", api.ErrIO, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read keymap: %v", api.ErrIO, err)
	}
	return entries, nil
}

// Save replaces the table contents with entries in one transaction.
func (s *SQLiteStore) Save(entries []Entry) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("%w: open sqlite %s: %v", api.ErrIO, s.path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(keymapSchema); err != nil {
		return fmt.Errorf("%w: create schema: %v", api.ErrIO, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", api.ErrIO, err)
	}
	if err := replaceEntries(tx, entries); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit keymap: %v", api.ErrIO, err)
	}
	return nil
}

func replaceEntries(tx *sql.Tx, entries []Entry) error {
	if _, err := tx.Exec(`DELETE FROM keymap`); err != nil {
		return fmt.Errorf("%w: clear keymap: %v", api.ErrIO, err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO keymap (seq, alias, long_key) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", api.ErrIO, err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range entries {
		if _, err := stmt.Exec(i, e.Alias, e.Key); err != nil {
			return fmt.Errorf("%w: insert %q: %v", api.ErrIO, e.Alias, err)
		}
	}
	return nil
}
