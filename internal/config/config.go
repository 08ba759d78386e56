// Package config loads the optional YAML configuration file. Every field
// has a default, so a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/format"
	"github.com/agentic-research/jsonshape/internal/transform"
	billy "github.com/go-git/go-billy/v5"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = ".jsonshape.yaml"

// Config is the on-disk configuration.
type Config struct {
	// CompactThreshold is the smart-formatting line length.
	CompactThreshold int `yaml:"compact_threshold"`
	// Indent is the number of spaces per nesting level.
	Indent int `yaml:"indent"`
	// Extensions are the file extensions discovery accepts.
	Extensions []string `yaml:"extensions"`
	// Exclude lists base names nest never merges.
	Exclude []string `yaml:"exclude"`
	// AutoSumPrefix opts a nest root into summing by its name.
	AutoSumPrefix string `yaml:"auto_sum_prefix"`

	Reserved transform.Reserved `yaml:"reserved"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CompactThreshold: format.DefaultThreshold,
		Indent:           2,
		Extensions:       []string{".json", ".csv", ".db"},
		Exclude:          []string{"protocol-schema.json"},
		AutoSumPrefix:    "protocols-",
		Reserved:         transform.DefaultReserved(),
	}
}

// Load reads path on fs over the defaults. Keys absent from the file keep
// their default values. When required is false a missing file yields the
// defaults.
func Load(fs billy.Filesystem, path string, required bool) (Config, error) {
	cfg := Default()

	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: open config %s: %v", api.ErrConfig, path, err)
	}
	defer func() { _ = f.Close() }()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: parse config %s: %v", api.ErrConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the engine cannot work with.
func (c Config) Validate() error {
	if c.Indent < 0 {
		return fmt.Errorf("%w: indent must not be negative, got %d", api.ErrConfig, c.Indent)
	}
	r := c.Reserved
	for _, f := range []struct{ name, v string }{
		{"reserved.length_marker", r.LengthMarker},
		{"reserved.manifest", r.Manifest},
		{"reserved.schema_key", r.SchemaKey},
		{"reserved.default_key_field", r.DefaultKeyField},
	} {
		if f.v == "" {
			return fmt.Errorf("%w: %s must not be empty", api.ErrConfig, f.name)
		}
	}
	if !r.IsPrivate(r.SchemaKey) {
		return fmt.Errorf("%w: schema key %q must start with the reserved prefix %q", api.ErrConfig, r.SchemaKey, r.Prefix)
	}
	if r.LengthMarker == r.Manifest {
		return fmt.Errorf("%w: length marker and manifest key must differ", api.ErrConfig)
	}
	return nil
}

// Marshal renders c as YAML, for writing a starter file.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
