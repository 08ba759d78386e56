package ingest

import (
	"fmt"
	"path/filepath"

	"github.com/agentic-research/jsonshape/api"
	billy "github.com/go-git/go-billy/v5"
)

// WriteFileAtomic writes data to path through a temporary file in the same
// directory and a rename, so readers never observe a partial file.
func WriteFileAtomic(fs billy.Filesystem, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", api.ErrIO, dir, err)
	}

	tmp, err := fs.TempFile(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", api.ErrIO, path, err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(name)
		return fmt.Errorf("%w: write %s: %v", api.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(name)
		return fmt.Errorf("%w: close %s: %v", api.ErrIO, path, err)
	}
	if err := fs.Rename(name, path); err != nil {
		_ = fs.Remove(name)
		return fmt.Errorf("%w: rename %s: %v", api.ErrIO, path, err)
	}
	return nil
}
