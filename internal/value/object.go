package value

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is an insertion-ordered string-keyed mapping. Setting an existing
// key replaces its value in place.
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, Value]()}
}

// Len returns the member count. A nil object is empty.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return o.m.Len()
}

// Get returns the value stored at key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	return o.m.Get(key)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v at key, appending new keys at the end.
func (o *Object) Set(key string, v Value) {
	o.m.Set(key, v)
}

// Delete removes key and returns the value it held.
func (o *Object) Delete(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	return o.m.Delete(key)
}

// Keys returns the keys in order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Range(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Range calls fn for each member in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// Merge copies every member of other into o, in other's order.
func (o *Object) Merge(other *Object) {
	other.Range(func(k string, v Value) bool {
		o.Set(k, v)
		return true
	})
}

// Clone returns a shallow copy.
func (o *Object) Clone() *Object {
	c := NewObject()
	c.Merge(o)
	return c
}

func (o *Object) equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	ka, kb := o.Keys(), other.Keys()
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
		va, _ := o.Get(ka[i])
		vb, _ := other.Get(kb[i])
		if !Equal(va, vb) {
			return false
		}
	}
	return true
}
