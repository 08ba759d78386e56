package ingest

import (
	"database/sql"
	"fmt"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/value"
	_ "modernc.org/sqlite"
)

// StreamSQLite iterates over all records in the results table of a SQLite
// database, calling fn for each one in rowid order.
func StreamSQLite(dbPath string, fn func(recordID string, record value.Value) error) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("%w: open sqlite %s: %v", api.ErrIO, dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query("SELECT id, record FROM results ORDER BY rowid")
	if err != nil {
		return fmt.Errorf("%w: query results: %v", api.ErrIO, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return fmt.Errorf("%w: scan row: %v", api.ErrIO, err)
		}
		parsed, err := value.Parse([]byte(raw))
		if err != nil {
			return fmt.Errorf("parse record %s: %w", id, err)
		}
		if err := fn(id, parsed); err != nil {
			return err
		}
	}
	return rows.Err()
}

// LoadSQLite reads every record of the results table into one array.
func LoadSQLite(dbPath string) (value.Value, error) {
	var records []value.Value
	err := StreamSQLite(dbPath, func(_ string, record value.Value) error {
		records = append(records, record)
		return nil
	})
	if err != nil {
		return value.Value{}, err
	}
	return value.Array(records...), nil
}
