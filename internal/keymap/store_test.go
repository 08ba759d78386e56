package keymap

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/transform"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []Entry{
	{Alias: "n", Key: "name"},
	{Alias: "a", Key: "age"},
	{Alias: "n1", Key: "nickname"},
}

func TestJSONStore(t *testing.T) {
	fs := memfs.New()
	s := OpenStore(fs, "maps/keymap.json")
	require.IsType(t, &JSONStore{}, s)

	_, err := s.Load()
	assert.True(t, errors.Is(err, ErrNotFound))

	entries, err := LoadOrEmpty(s)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, s.Save(sample))
	data, err := util.ReadFile(fs, "maps/keymap.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"n\": \"name\",\n  \"a\": \"age\",\n  \"n1\": \"nickname\"\n}", string(data))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestJSONStoreRejectsMalformed(t *testing.T) {
	fs := memfs.New()
	tests := map[string]string{
		"not json":       `{"n": `,
		"not an object":  `["n", "name"]`,
		"non-string key": `{"n": 1}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, util.WriteFile(fs, "k.json", []byte(content), 0o644))
			_, err := OpenStore(fs, "k.json").Load()
			assert.True(t, errors.Is(err, api.ErrParse), "%v", err)
		})
	}
}

func TestSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	fs := osfs.New(dir)

	s := OpenStore(fs, "keymap.db")
	require.IsType(t, &SQLiteStore{}, s)
	assert.Equal(t, filepath.Join(dir, "keymap.db"), s.Location())

	_, err := s.Load()
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Save(sample))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, sample, got)

	// A second save replaces the table rather than appending.
	require.NoError(t, s.Save(sample[:1]))
	got, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, sample[:1], got)
}

func TestSQLiteStoreEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.sqlite")
	require.NoError(t, NewSQLiteStore(path).Save(nil))

	got, err := NewSQLiteStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreFeedsGenerate(t *testing.T) {
	fs := memfs.New()
	s := OpenStore(fs, "keymap.json")
	require.NoError(t, s.Save([]Entry{{Alias: "n", Key: "name"}}))

	existing, err := LoadOrEmpty(s)
	require.NoError(t, err)
	a := NewAbbreviator(existing, transform.DefaultReserved())
	assert.Equal(t, "n", a.Abbreviate("name"))
	assert.Equal(t, "n1", a.Abbreviate("note"))
	require.NoError(t, s.Save(a.Entries()))

	reloaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Alias: "n", Key: "name"}, {Alias: "n1", Key: "note"}}, reloaded)
}
