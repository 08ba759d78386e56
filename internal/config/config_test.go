package config

import (
	"errors"
	"testing"

	"github.com/agentic-research/jsonshape/api"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	fs := memfs.New()

	cfg, err := Load(fs, DefaultPath, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(fs, "custom.yaml", true)
	assert.True(t, errors.Is(err, api.ErrConfig))
}

func TestLoadOverridesDefaults(t *testing.T) {
	fs := memfs.New()
	content := `
compact_threshold: 120
extensions: [".json"]
reserved:
  length_marker: "__COUNT__"
`
	require.NoError(t, util.WriteFile(fs, "c.yaml", []byte(content), 0o644))

	cfg, err := Load(fs, "c.yaml", true)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.CompactThreshold)
	assert.Equal(t, []string{".json"}, cfg.Extensions)
	assert.Equal(t, "__COUNT__", cfg.Reserved.LengthMarker)

	// Untouched keys keep their defaults, including inside nested blocks.
	assert.Equal(t, 2, cfg.Indent)
	assert.Equal(t, "manifest", cfg.Reserved.Manifest)
	assert.Equal(t, "protocols-", cfg.AutoSumPrefix)
}

func TestLoadEmptyFile(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "empty.yaml", nil, 0o644))
	cfg, err := Load(fs, "empty.yaml", true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":            "compact_treshold: 10\n",
		"bad yaml":               "indent: [\n",
		"negative indent":        "indent: -1\n",
		"empty marker":           "reserved:\n  length_marker: \"\"\n",
		"public schema key":      "reserved:\n  schema_key: schema\n",
		"marker equals manifest": "reserved:\n  length_marker: manifest\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			fs := memfs.New()
			require.NoError(t, util.WriteFile(fs, "c.yaml", []byte(content), 0o644))
			_, err := Load(fs, "c.yaml", true)
			assert.True(t, errors.Is(err, api.ErrConfig), "%v", err)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "compact_threshold: 80")

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, DefaultPath, data, 0o644))
	cfg, err := Load(fs, DefaultPath, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
