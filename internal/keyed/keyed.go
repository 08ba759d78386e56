// Package keyed converts between an array of uniform records and the
// columnar keyed form: one header under the schema key plus one positional
// row per record, keyed by the string form of a chosen field.
package keyed

import (
	"fmt"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/transform"
	"github.com/agentic-research/jsonshape/internal/value"
)

// IsKeyed reports whether v is an object carrying a schema header.
func IsKeyed(v value.Value, r transform.Reserved) bool {
	return v.Kind() == value.KindObject && v.Object().Has(r.SchemaKey)
}

// ToKeyed converts records to keyed form. Field order is the first-seen
// order across all records, excluding keyField; a field a record lacks is
// stored as null in its row. Records sharing a key string collapse to the
// last one. An empty array yields a header with no fields.
func ToKeyed(records value.Value, keyField string, r transform.Reserved) (value.Value, error) {
	if records.Kind() != value.KindArray {
		return value.Value{}, fmt.Errorf("%w: keyed conversion needs an array of records, got %s", api.ErrSchemaMismatch, records.Kind())
	}

	var fields []string
	seen := map[string]bool{keyField: true}
	for i, rec := range records.Items() {
		if rec.Kind() != value.KindObject {
			return value.Value{}, fmt.Errorf("%w: record %d is %s, not an object", api.ErrSchemaMismatch, i, rec.Kind())
		}
		rec.Object().Range(func(k string, _ value.Value) bool {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
			return true
		})
	}

	out := value.NewObject()
	out.Set(r.SchemaKey, headerValue(api.NewKeyedSchema(keyField, fields)))
	for i, rec := range records.Items() {
		obj := rec.Object()
		key, ok := obj.Get(keyField)
		if !ok {
			return value.Value{}, fmt.Errorf("%w: record %d has no %q field", api.ErrSchemaMismatch, i, keyField)
		}
		row := make([]value.Value, len(fields))
		for j, f := range fields {
			row[j], _ = obj.Get(f) // absent → zero Value, which is null
		}
		out.Set(key.Text(), value.Array(row...))
	}
	return value.ObjectOf(out), nil
}

// FromKeyed rebuilds the record array from a keyed object. Private keys,
// the header among them, are skipped. Each record starts with the key field
// holding the row key as a string, followed by the row values zipped to the
// header fields; a non-array row yields a record with only the key field.
func FromKeyed(v value.Value, r transform.Reserved) (value.Value, error) {
	if v.Kind() != value.KindObject {
		return value.Value{}, fmt.Errorf("%w: keyed document must be an object, got %s", api.ErrSchemaMismatch, v.Kind())
	}
	obj := v.Object()
	header := ReadHeader(obj, r)

	records := []value.Value{}
	obj.Range(func(k string, row value.Value) bool {
		if r.IsPrivate(k) {
			return true
		}
		rec := value.NewObject()
		rec.Set(header.KeyField, value.String(k))
		items := row.Items()
		for j := 0; j < len(header.Fields) && j < len(items); j++ {
			rec.Set(header.Fields[j], items[j])
		}
		records = append(records, value.ObjectOf(rec))
		return true
	})
	return value.Array(records...), nil
}

// ReadHeader decodes the schema header of a keyed object. A missing or
// ill-typed key_field falls back to the default key field and missing or
// ill-typed fields to none; non-string field names are dropped.
func ReadHeader(obj *value.Object, r transform.Reserved) api.KeyedSchema {
	keyField := r.DefaultKeyField
	var fields []string

	raw, _ := obj.Get(r.SchemaKey)
	if h := raw.Object(); h != nil {
		if kf, ok := h.Get("key_field"); ok && kf.Kind() == value.KindString {
			keyField = kf.AsString()
		}
		if fs, ok := h.Get("fields"); ok {
			for _, f := range fs.Items() {
				if f.Kind() == value.KindString {
					fields = append(fields, f.AsString())
				}
			}
		}
	}
	return api.NewKeyedSchema(keyField, fields)
}

func headerValue(s api.KeyedSchema) value.Value {
	fields := make([]value.Value, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = value.String(f)
	}
	h := value.NewObject()
	h.Set("format", value.String(s.Format))
	h.Set("key_field", value.String(s.KeyField))
	h.Set("fields", value.Array(fields...))
	return value.ObjectOf(h)
}
