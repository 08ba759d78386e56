package keymap

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/agentic-research/jsonshape/internal/transform"
	"github.com/agentic-research/jsonshape/internal/value"
)

// ExtractKeys collects every public object key in v, sorted and unique.
// Private keys are left out but their values are searched; the keyed
// header is skipped whole.
func ExtractKeys(v value.Value, r transform.Reserved) []string {
	set := make(map[string]struct{})
	collectKeys(v, r, set)
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func collectKeys(v value.Value, r transform.Reserved, set map[string]struct{}) {
	switch v.Kind() {
	case value.KindObject:
		v.Object().Range(func(k string, child value.Value) bool {
			if k == r.SchemaKey {
				return true
			}
			if !r.IsPrivate(k) {
				set[k] = struct{}{}
			}
			collectKeys(child, r, set)
			return true
		})
	case value.KindArray:
		for _, item := range v.Items() {
			collectKeys(item, r, set)
		}
	}
}

// AbbreviateAll allocates aliases for a batch of keys, shortest first so
// short keys claim single-character aliases before longer keys compete for
// them. Keys of equal length go in lexical order.
func (a *Abbreviator) AbbreviateAll(keys []string) {
	sorted := append([]string(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(sorted[i]), utf8.RuneCountInString(sorted[j])
		if li != lj {
			return li < lj
		}
		return sorted[i] < sorted[j]
	})
	for _, k := range sorted {
		a.Abbreviate(k)
	}
}

// Generate builds a keymap for keys on top of existing entries.
func Generate(existing []Entry, keys []string, r transform.Reserved) *Abbreviator {
	a := NewAbbreviator(existing, r)
	a.AbbreviateAll(keys)
	return a
}

// Savings returns the share of key characters saved by the aliases, as a
// percentage rounded to one decimal.
func Savings(entries []Entry) float64 {
	var long, short int
	for _, e := range entries {
		long += utf8.RuneCountInString(e.Key)
		short += utf8.RuneCountInString(e.Alias)
	}
	if long == 0 {
		return 0
	}
	return Round1(100 * (1 - float64(short)/float64(long)))
}

// Round1 rounds to one decimal place.
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}
