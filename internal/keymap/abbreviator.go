// Package keymap allocates short aliases for long object keys and persists
// the resulting alias → key mapping between runs.
package keymap

import (
	"strconv"

	"github.com/agentic-research/jsonshape/internal/transform"
	"github.com/agentic-research/jsonshape/internal/value"
)

// maxNumericSuffix bounds the firstChar+N stage of the allocation ladder.
const maxNumericSuffix = 999

// Direction selects which way Apply rewrites keys.
type Direction int

const (
	// Forward rewrites long keys to aliases, minting aliases as needed.
	Forward Direction = iota
	// Backward rewrites aliases to long keys.
	Backward
)

// Entry is one alias → long key pair.
type Entry struct {
	Alias string `json:"alias"`
	Key   string `json:"key"`
}

// Abbreviator owns one keymap: the alias → key and key → alias indexes and
// the set of claimed aliases. Aliases loaded at construction are
// authoritative and never reassigned.
//
// An Abbreviator is not safe for concurrent use. Abbreviate claims aliases
// as a side effect, so a run must keep one owner.
type Abbreviator struct {
	reserved transform.Reserved

	aliasToKey map[string]string
	keyToAlias map[string]string
	order      []string // aliases, loaded first then minted
	loaded     int
	collisions []string
}

// NewAbbreviator seeds an abbreviator with existing entries. When two
// entries share a long key the later alias wins for lookups; both aliases
// stay claimed.
func NewAbbreviator(existing []Entry, r transform.Reserved) *Abbreviator {
	a := &Abbreviator{
		reserved:   r,
		aliasToKey: make(map[string]string, len(existing)),
		keyToAlias: make(map[string]string, len(existing)),
	}
	for _, e := range existing {
		if _, dup := a.aliasToKey[e.Alias]; !dup {
			a.order = append(a.order, e.Alias)
		}
		a.aliasToKey[e.Alias] = e.Key
		a.keyToAlias[e.Key] = e.Alias
	}
	a.loaded = len(a.order)
	return a
}

// Abbreviate returns the alias for long, minting one on first sight:
// the first character; else the first character followed by 1..999; else
// successively longer prefixes; else the key itself. When even the key
// itself is claimed by another key, long is returned unmapped and recorded
// as a collision.
func (a *Abbreviator) Abbreviate(long string) string {
	if alias, ok := a.keyToAlias[long]; ok {
		return alias
	}
	runes := []rune(long)
	if len(runes) > 0 {
		first := string(runes[0])
		if a.claim(first, long) {
			return first
		}
		for i := 1; i <= maxNumericSuffix; i++ {
			if c := first + strconv.Itoa(i); a.claim(c, long) {
				return c
			}
		}
		for n := 2; n <= len(runes); n++ {
			if c := string(runes[:n]); a.claim(c, long) {
				return c
			}
		}
	}
	if a.claim(long, long) {
		return long
	}
	a.collisions = append(a.collisions, long)
	return long
}

func (a *Abbreviator) claim(alias, long string) bool {
	if _, used := a.aliasToKey[alias]; used {
		return false
	}
	a.aliasToKey[alias] = long
	a.keyToAlias[long] = alias
	a.order = append(a.order, alias)
	return true
}

// Lookup returns the alias already assigned to long without minting one.
func (a *Abbreviator) Lookup(long string) (string, bool) {
	alias, ok := a.keyToAlias[long]
	return alias, ok
}

// Resolve returns the long key behind alias.
func (a *Abbreviator) Resolve(alias string) (string, bool) {
	long, ok := a.aliasToKey[alias]
	return long, ok
}

// Apply rewrites every public object key in v. Private keys keep their
// names but their values are still rewritten, except the keyed header,
// which is copied through untouched. Backward leaves unknown aliases
// unchanged.
func (a *Abbreviator) Apply(v value.Value, dir Direction) value.Value {
	switch v.Kind() {
	case value.KindObject:
		out := value.NewObject()
		v.Object().Range(func(k string, child value.Value) bool {
			switch {
			case k == a.reserved.SchemaKey:
				out.Set(k, child)
			case a.reserved.IsPrivate(k):
				out.Set(k, a.Apply(child, dir))
			default:
				out.Set(a.rewrite(k, dir), a.Apply(child, dir))
			}
			return true
		})
		return value.ObjectOf(out)
	case value.KindArray:
		items := make([]value.Value, v.Len())
		for i, item := range v.Items() {
			items[i] = a.Apply(item, dir)
		}
		return value.Array(items...)
	default:
		return v
	}
}

func (a *Abbreviator) rewrite(key string, dir Direction) string {
	if dir == Forward {
		return a.Abbreviate(key)
	}
	if long, ok := a.aliasToKey[key]; ok {
		return long
	}
	return key
}

// Len returns the number of claimed aliases.
func (a *Abbreviator) Len() int { return len(a.order) }

// Entries returns every mapping, loaded entries first, then minted ones in
// minting order.
func (a *Abbreviator) Entries() []Entry {
	return a.entries(a.order)
}

// NewEntries returns only the mappings minted by this abbreviator.
func (a *Abbreviator) NewEntries() []Entry {
	return a.entries(a.order[a.loaded:])
}

// Collisions lists keys that could not be given an alias of their own.
func (a *Abbreviator) Collisions() []string {
	return append([]string(nil), a.collisions...)
}

func (a *Abbreviator) entries(aliases []string) []Entry {
	out := make([]Entry, len(aliases))
	for i, alias := range aliases {
		out[i] = Entry{Alias: alias, Key: a.aliasToKey[alias]}
	}
	return out
}
