package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/value"
)

// Load turns a document into a value tree according to its extension:
// SQLite databases yield their records, CSV files yield one string-valued
// record per row, everything else is parsed as strict JSON.
func Load(doc Document) (value.Value, error) {
	switch doc.Ext {
	case ".db":
		return LoadSQLite(doc.LocalPath)
	case ".csv":
		return ParseCSV(doc.Data)
	default:
		v, err := value.Parse(doc.Data)
		if err != nil {
			return value.Value{}, fmt.Errorf("%s: %w", doc.Path, err)
		}
		return v, nil
	}
}

// ParseCSV reads a header row followed by data rows and returns an array of
// records keyed by the header. Short rows omit their missing trailing
// fields.
func ParseCSV(data []byte) (value.Value, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return value.Array(), nil
	}
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: csv header: %v", api.ErrParse, err)
	}

	var records []value.Value
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: csv row: %v", api.ErrParse, err)
		}
		rec := value.NewObject()
		for i, field := range header {
			if i >= len(row) {
				break
			}
			rec.Set(field, value.String(row[i]))
		}
		records = append(records, value.ObjectOf(rec))
	}
	return value.Array(records...), nil
}
