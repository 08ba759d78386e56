package api

// KeyedFormatPrefix prefixes the "format" entry of a keyed document header.
const KeyedFormatPrefix = "keyed_json:"

// KeyedSchema is the header stored under the schema key of a keyed document.
// It maps the columnar rows back to record fields.
type KeyedSchema struct {
	// Format is always KeyedFormatPrefix + KeyField.
	Format string `json:"format"`
	// KeyField names the record field whose value became the row key.
	KeyField string `json:"key_field"`
	// Fields lists the remaining fields in first-seen order.
	// Row values are positionally aligned to it.
	Fields []string `json:"fields"`
}

// NewKeyedSchema builds a header for the given key field and field order.
func NewKeyedSchema(keyField string, fields []string) KeyedSchema {
	if fields == nil {
		fields = []string{}
	}
	return KeyedSchema{
		Format:   KeyedFormatPrefix + keyField,
		KeyField: keyField,
		Fields:   fields,
	}
}

// OutputMode selects how documents are serialized.
type OutputMode string

const (
	// OutputSmart collapses small containers onto one line and expands large ones.
	OutputSmart OutputMode = "smart"
	// OutputCompact emits minimal single-line JSON.
	OutputCompact OutputMode = "compact"
	// OutputPretty emits fully indented JSON.
	OutputPretty OutputMode = "pretty"
)

// Options is the flat configuration record handed from the CLI layer to the
// batch operations. The core never parses argument syntax itself.
type Options struct {
	Inputs    []string `json:"inputs"`
	OutputDir string   `json:"output_dir,omitempty"`
	// OutputFile is used by nest and unnest, which produce one document.
	OutputFile string `json:"output_file,omitempty"`
	KeymapPath string `json:"keymap_path,omitempty"`

	// Minify steps.
	RemoveNulls      bool `json:"null_removal,omitempty"`
	CompressBooleans bool `json:"bool_compress,omitempty"`
	Flatten          bool `json:"flatten,omitempty"`
	Keyed            bool `json:"keyed,omitempty"`
	// KeyField is the keyed-conversion field; empty picks the first key of the first record.
	KeyField string `json:"key_field,omitempty"`

	// Expand.
	FromKeyed bool `json:"from_keyed,omitempty"`

	// Scan.
	Selector string `json:"selector,omitempty"`

	// Nest.
	Length        []string `json:"length,omitempty"`
	Sum           []string `json:"sum,omitempty"`
	Wrap          string   `json:"wrap,omitempty"`
	Flat          bool     `json:"flat,omitempty"`
	AutoSumPrefix string   `json:"auto_sum_prefix,omitempty"`

	// Verify.
	AutoFix bool `json:"auto_fix,omitempty"`

	Mode OutputMode `json:"mode,omitempty"`
}
