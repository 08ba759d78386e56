package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ToAny converts v to the generic form used by encoding/json and ojg:
// map[string]any, []any, string, bool, nil, int64 or float64.
func ToAny(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		if n, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v.s, 64); err == nil {
			return f
		}
		return v.s
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = ToAny(item)
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		v.obj.Range(func(k string, item Value) bool {
			out[k] = ToAny(item)
			return true
		})
		return out
	default:
		return nil
	}
}

// FromAny converts a generic value back. Go maps carry no order, so object
// members come out sorted by key.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		return Number(t.String())
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Array(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromAny(t[k]))
		}
		return ObjectOf(obj)
	default:
		return String(fmt.Sprint(t))
	}
}
