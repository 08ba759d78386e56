package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentic-research/jsonshape/api"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

// Document is one discovered input.
type Document struct {
	// Path is the path on the finder's filesystem.
	Path string
	// Name is the base name without extension.
	Name string
	// Ext is the lower-cased extension, including the dot.
	Ext string
	// Data holds the raw bytes. It is nil for SQLite inputs, which are read
	// through LocalPath instead.
	Data []byte
	// Size is the on-disk size in bytes.
	Size int64
	// LocalPath is Path resolved against the filesystem root.
	LocalPath string
}

// Finder resolves input paths on a billy filesystem to a sorted,
// de-duplicated list of documents filtered by extension.
type Finder struct {
	FS         billy.Filesystem
	Extensions []string
	// Exclude lists base names that are never returned.
	Exclude []string
	Logger  *zap.Logger
}

// NewFinder returns a finder over fs accepting the given extensions.
func NewFinder(fs billy.Filesystem, extensions []string, exclude []string, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{FS: fs, Extensions: extensions, Exclude: exclude, Logger: logger}
}

// Find implements Source. Directories are walked recursively. Paths that
// do not exist are skipped.
func (f *Finder) Find(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, p := range paths {
		info, err := f.FS.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				f.Logger.Debug("skipping missing path", zap.String("path", p))
				continue
			}
			return nil, fmt.Errorf("%w: stat %s: %v", api.ErrIO, p, err)
		}

		if !info.IsDir() {
			if f.accepts(p) {
				seen[filepath.Clean(p)] = struct{}{}
			}
			continue
		}

		err = util.Walk(f.FS, p, func(filePath string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fileInfo.IsDir() && f.accepts(filePath) {
				seen[filepath.Clean(filePath)] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: walk %s: %v", api.ErrIO, p, err)
		}
	}

	files := make([]string, 0, len(seen))
	for p := range seen {
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

func (f *Finder) accepts(path string) bool {
	base := filepath.Base(path)
	for _, ex := range f.Exclude {
		if base == ex {
			return false
		}
	}
	if len(f.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range f.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// Read implements Source.
func (f *Finder) Read(path string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	doc := Document{
		Path:      path,
		Name:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Ext:       ext,
		LocalPath: f.LocalPath(path),
	}

	info, err := f.FS.Stat(path)
	if err != nil {
		return doc, fmt.Errorf("%w: stat %s: %v", api.ErrIO, path, err)
	}
	doc.Size = info.Size()

	if ext == ".db" {
		return doc, nil
	}
	doc.Data, err = util.ReadFile(f.FS, path)
	if err != nil {
		return doc, fmt.Errorf("%w: read %s: %v", api.ErrIO, path, err)
	}
	return doc, nil
}

// LocalPath resolves path against the filesystem root, for consumers such
// as SQLite that need a real path.
func (f *Finder) LocalPath(path string) string {
	if filepath.IsAbs(path) && f.FS.Root() == string(filepath.Separator) {
		return path
	}
	return filepath.Join(f.FS.Root(), path)
}
