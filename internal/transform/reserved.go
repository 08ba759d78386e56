// Package transform holds the pure structural transforms over value trees:
// null removal, boolean compaction, flattening and unnesting.
package transform

import "strings"

// Reserved is the closed set of sentinel names the transforms treat
// specially. It is declared once and threaded through every component.
type Reserved struct {
	// Prefix marks private keys (skipped by scans, unnest and abbreviation).
	Prefix string `yaml:"prefix"`
	// LengthMarker is the count-marker key attached to object nodes.
	LengthMarker string `yaml:"length_marker"`
	// Manifest is the root key holding derived totals.
	Manifest string `yaml:"manifest"`
	// SchemaKey holds the keyed-format header.
	SchemaKey string `yaml:"schema_key"`
	// Separator joins path segments when flattening.
	Separator string `yaml:"separator"`
	// DefaultKeyField is assumed when a keyed header names no key field.
	DefaultKeyField string `yaml:"default_key_field"`
}

// DefaultReserved returns the conventional names.
func DefaultReserved() Reserved {
	return Reserved{
		Prefix:          "_",
		LengthMarker:    "__LENGTH__",
		Manifest:        "manifest",
		SchemaKey:       "_schema",
		Separator:       "_",
		DefaultKeyField: "id",
	}
}

// IsPrivate reports whether key starts with the reserved prefix.
func (r Reserved) IsPrivate(key string) bool {
	return r.Prefix != "" && strings.HasPrefix(key, r.Prefix)
}

// IsMarker reports whether key is the count marker or the manifest key.
func (r Reserved) IsMarker(key string) bool {
	return key == r.LengthMarker || key == r.Manifest
}

// Join appends segment to a path prefix.
func (r Reserved) Join(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + r.Separator + segment
}
