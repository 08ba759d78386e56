// Package value defines the JSON tree every transform operates on: an
// explicit tagged union over null, bool, number, string, object and array.
// Objects keep insertion order, which is significant for output.
package value

import (
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a JSON value. The zero Value is null.
type Value struct {
	kind Kind

	b   bool
	s   string // string contents, or the number literal
	obj *Object
	arr []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number wraps a number literal. The literal is emitted verbatim, so callers
// must pass valid JSON number syntax.
func Number(lit string) Value { return Value{kind: KindNumber, s: lit} }

// Int wraps an integer.
func Int(n int64) Value { return Number(strconv.FormatInt(n, 10)) }

// Float wraps a float, using the shortest literal that round-trips.
// Integral values render without a fraction.
func Float(f float64) Value { return Number(strconv.FormatFloat(f, 'f', -1, 64)) }

// ObjectOf wraps an object. A nil object becomes an empty one.
func ObjectOf(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Array wraps items. A nil slice becomes an empty array.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsContainer reports whether v is an object or an array.
func (v Value) IsContainer() bool { return v.kind == KindObject || v.kind == KindArray }

// AsBool returns the boolean payload; false for other kinds.
func (v Value) AsBool() bool { return v.kind == KindBool && v.b }

// AsString returns the string payload; empty for other kinds.
func (v Value) AsString() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Literal returns the number literal; empty for other kinds.
func (v Value) Literal() string {
	if v.kind != KindNumber {
		return ""
	}
	return v.s
}

// Float64 parses a number value.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Object returns the object payload, or nil when v is not an object.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Items returns the array payload, or nil when v is not an array.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Len returns the number of members or items of a container, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return v.obj.Len()
	case KindArray:
		return len(v.arr)
	default:
		return 0
	}
}

// Text renders v as a plain string the way a record key is derived from it:
// strings as-is, numbers by literal, booleans and null by keyword, containers
// as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return v.s
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNull:
		return "null"
	default:
		return Compact(v)
	}
}

// Equal reports whether a and b are the same tree. Object member order is
// significant and number literals compare textually.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber, KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return a.obj.equal(b.obj)
	default:
		return false
	}
}
