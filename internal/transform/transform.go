package transform

import (
	"strconv"

	"github.com/agentic-research/jsonshape/internal/value"
)

// RemoveNulls drops null object members and null array items at every
// level. Children are processed before their parent decides what to drop.
func RemoveNulls(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindObject:
		out := value.NewObject()
		v.Object().Range(func(k string, child value.Value) bool {
			child = RemoveNulls(child)
			if !child.IsNull() {
				out.Set(k, child)
			}
			return true
		})
		return value.ObjectOf(out)
	case value.KindArray:
		items := make([]value.Value, 0, v.Len())
		for _, item := range v.Items() {
			item = RemoveNulls(item)
			if !item.IsNull() {
				items = append(items, item)
			}
		}
		return value.Array(items...)
	default:
		return v
	}
}

// CompressBooleans rewrites true and false as 1 and 0.
func CompressBooleans(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindBool:
		if v.AsBool() {
			return value.Int(1)
		}
		return value.Int(0)
	case value.KindObject:
		out := value.NewObject()
		v.Object().Range(func(k string, child value.Value) bool {
			out.Set(k, CompressBooleans(child))
			return true
		})
		return value.ObjectOf(out)
	case value.KindArray:
		items := make([]value.Value, v.Len())
		for i, item := range v.Items() {
			items[i] = CompressBooleans(item)
		}
		return value.Array(items...)
	default:
		return v
	}
}

// Flatten renders a tree as a single-level object whose keys are the
// separator-joined paths to each leaf (array indices in decimal). A scalar
// root yields one member under the empty path. Empty containers produce no
// leaves. Keys that already contain the separator make the result ambiguous;
// Flatten has no inverse.
func Flatten(v value.Value, r Reserved) value.Value {
	out := value.NewObject()
	if !v.IsContainer() {
		out.Set("", v)
		return value.ObjectOf(out)
	}
	flattenInto(out, v, "", r)
	return value.ObjectOf(out)
}

func flattenInto(out *value.Object, v value.Value, prefix string, r Reserved) {
	visit := func(key string, child value.Value) {
		if child.IsContainer() {
			flattenInto(out, child, key, r)
			return
		}
		out.Set(key, child)
	}
	switch v.Kind() {
	case value.KindObject:
		v.Object().Range(func(k string, child value.Value) bool {
			visit(r.Join(prefix, k), child)
			return true
		})
	case value.KindArray:
		for i, item := range v.Items() {
			visit(r.Join(prefix, strconv.Itoa(i)), item)
		}
	}
}

// Unnest flattens a merged tree back to root-level joined keys. Unlike
// Flatten it skips private keys and the manifest at every level, and only
// descends into an object when at least one of its keys is public; an
// object holding only private keys is kept whole as a leaf.
func Unnest(v value.Value, r Reserved) value.Value {
	out := value.NewObject()
	unnestInto(out, v, "", r)
	return value.ObjectOf(out)
}

func unnestInto(out *value.Object, v value.Value, prefix string, r Reserved) {
	switch v.Kind() {
	case value.KindObject:
		v.Object().Range(func(k string, child value.Value) bool {
			if r.IsPrivate(k) || k == r.Manifest {
				return true
			}
			key := r.Join(prefix, k)
			if child.Kind() == value.KindObject && hasPublicKey(child.Object(), r) {
				unnestInto(out, child, key, r)
			} else {
				out.Set(key, child)
			}
			return true
		})
	case value.KindArray:
		for i, item := range v.Items() {
			key := r.Join(prefix, strconv.Itoa(i))
			if item.IsContainer() {
				unnestInto(out, item, key, r)
			} else {
				out.Set(key, item)
			}
		}
	default:
		out.Set(prefix, v)
	}
}

func hasPublicKey(o *value.Object, r Reserved) bool {
	public := false
	o.Range(func(k string, _ value.Value) bool {
		if !r.IsPrivate(k) {
			public = true
			return false
		}
		return true
	})
	return public
}
