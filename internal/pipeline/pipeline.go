// Package pipeline composes the structural transforms over one document in
// a fixed order and records which steps ran.
package pipeline

import (
	"github.com/agentic-research/jsonshape/internal/keyed"
	"github.com/agentic-research/jsonshape/internal/keymap"
	"github.com/agentic-research/jsonshape/internal/transform"
	"github.com/agentic-research/jsonshape/internal/value"
)

// Step names, as reported in the applied log.
const (
	StepNullRemoval  = "null-removal"
	StepBoolCompress = "bool-compress"
	StepAbbrevKeys   = "abbrev-keys"
	StepToKeyed      = "to-keyed"
	StepFlatten      = "flatten"
	StepFromKeyed    = "from-keyed"
	StepExpandKeys   = "expand-keys"
)

// Steps selects the minify steps to run. They always run in the order
// null-removal, bool-compress, abbrev-keys, to-keyed, flatten: abbreviation
// precedes keyed conversion so the header names aliases, and flatten comes
// last because keyed conversion needs the nesting it removes.
type Steps struct {
	RemoveNulls      bool
	CompressBooleans bool
	// Abbreviator enables key abbreviation when non-nil. It is shared
	// across the documents of a run and mutated by it.
	Abbreviator *keymap.Abbreviator
	Keyed       bool
	// KeyField names the keyed-conversion field by its original name.
	// Empty picks the first key of the first record.
	KeyField string
	Flatten  bool

	Reserved transform.Reserved
}

// Result is a transformed document and the steps that ran, in order.
type Result struct {
	Value   value.Value
	Applied []string
}

// Changed reports whether any step ran.
func (r Result) Changed() bool { return len(r.Applied) > 0 }

// Run applies the selected steps to v. Keyed conversion only applies to
// arrays; a document of another shape passes through it unlogged.
func Run(v value.Value, s Steps) (Result, error) {
	res := Result{Value: v}
	if s.RemoveNulls {
		res.apply(StepNullRemoval, transform.RemoveNulls)
	}
	if s.CompressBooleans {
		res.apply(StepBoolCompress, transform.CompressBooleans)
	}
	if s.Abbreviator != nil {
		res.apply(StepAbbrevKeys, func(v value.Value) value.Value {
			return s.Abbreviator.Apply(v, keymap.Forward)
		})
	}
	if s.Keyed && res.Value.Kind() == value.KindArray {
		out, err := keyed.ToKeyed(res.Value, s.keyField(res.Value), s.Reserved)
		if err != nil {
			return res, err
		}
		res.Value = out
		res.Applied = append(res.Applied, StepToKeyed)
	}
	if s.Flatten {
		res.apply(StepFlatten, func(v value.Value) value.Value {
			return transform.Flatten(v, s.Reserved)
		})
	}
	return res, nil
}

// keyField resolves the field to key records by. An explicit field is
// translated to its alias when abbreviation has run.
func (s Steps) keyField(records value.Value) string {
	if s.KeyField != "" {
		if s.Abbreviator != nil {
			if alias, ok := s.Abbreviator.Lookup(s.KeyField); ok {
				return alias
			}
		}
		return s.KeyField
	}
	if items := records.Items(); len(items) > 0 {
		if keys := items[0].Object().Keys(); len(keys) > 0 {
			return keys[0]
		}
	}
	return s.Reserved.DefaultKeyField
}

// Expand inverts a minified document: keyed form back to records when
// fromKeyed is set and the document is keyed, then aliases back to long
// keys. Keyed headers hold aliases as string values, which key expansion
// cannot reach, so records are rebuilt first.
func Expand(v value.Value, a *keymap.Abbreviator, fromKeyed bool, r transform.Reserved) (Result, error) {
	res := Result{Value: v}
	if fromKeyed && keyed.IsKeyed(v, r) {
		out, err := keyed.FromKeyed(v, r)
		if err != nil {
			return res, err
		}
		res.Value = out
		res.Applied = append(res.Applied, StepFromKeyed)
	}
	if a != nil {
		res.apply(StepExpandKeys, func(v value.Value) value.Value {
			if keyed.IsKeyed(v, r) {
				return expandRows(v, a, r)
			}
			return a.Apply(v, keymap.Backward)
		})
	}
	return res, nil
}

// expandRows expands keys below the rows of a keyed document. Row keys are
// record identifiers, not aliases, and stay as they are, as does the header.
func expandRows(v value.Value, a *keymap.Abbreviator, r transform.Reserved) value.Value {
	out := value.NewObject()
	v.Object().Range(func(k string, row value.Value) bool {
		if k == r.SchemaKey {
			out.Set(k, row)
		} else {
			out.Set(k, a.Apply(row, keymap.Backward))
		}
		return true
	})
	return value.ObjectOf(out)
}

func (r *Result) apply(name string, fn func(value.Value) value.Value) {
	r.Value = fn(r.Value)
	r.Applied = append(r.Applied, name)
}
