package keymap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/ingest"
	"github.com/agentic-research/jsonshape/internal/value"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ErrNotFound is returned by Store.Load when no keymap has been saved yet.
var ErrNotFound = errors.New("keymap not found")

// Store persists a keymap between runs. Save always writes the full set of
// entries, in the order given.
type Store interface {
	Load() ([]Entry, error)
	Save(entries []Entry) error
	Location() string
}

// OpenStore picks a store for path by extension: SQLite for .db, .sqlite
// and .sqlite3, a JSON object file otherwise. SQLite paths are resolved
// against the filesystem root since the driver opens them directly.
func OpenStore(fs billy.Filesystem, path string) Store {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(filepath.Join(fs.Root(), path))
	default:
		return &JSONStore{FS: fs, Path: path}
	}
}

// LoadOrEmpty loads s, treating a missing keymap as an empty one.
func LoadOrEmpty(s Store) ([]Entry, error) {
	entries, err := s.Load()
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return entries, err
}

// JSONStore keeps the keymap as one JSON object mapping alias to long key.
type JSONStore struct {
	FS   billy.Filesystem
	Path string
}

func (s *JSONStore) Location() string { return s.Path }

// Load reads the keymap file. Member order is preserved.
func (s *JSONStore) Load() ([]Entry, error) {
	data, err := util.ReadFile(s.FS, s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
		}
		return nil, fmt.Errorf("%w: read keymap %s: %v", api.ErrIO, s.Path, err)
	}

	doc, err := value.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("keymap %s: %w", s.Path, err)
	}
	if doc.Kind() != value.KindObject {
		return nil, fmt.Errorf("%w: keymap %s must be an object of strings", api.ErrParse, s.Path)
	}

	entries := make([]Entry, 0, doc.Len())
	var bad string
	doc.Object().Range(func(alias string, long value.Value) bool {
		if long.Kind() != value.KindString {
			bad = alias
			return false
		}
		entries = append(entries, Entry{Alias: alias, Key: long.AsString()})
		return true
	})
	if bad != "" {
		return nil, fmt.Errorf("%w: keymap %s: alias %q does not map to a string", api.ErrParse, s.Path, bad)
	}
	return entries, nil
}

// Save rewrites the keymap file atomically, indented two spaces.
func (s *JSONStore) Save(entries []Entry) error {
	obj := value.NewObject()
	for _, e := range entries {
		obj.Set(e.Alias, value.String(e.Key))
	}
	return ingest.WriteFileAtomic(s.FS, s.Path, []byte(value.Indent(value.ObjectOf(obj), "  ")))
}
