// Package batch runs the engine over sets of documents. Every operation
// resolves its inputs on a billy filesystem, records per-document failures
// in the returned api.Result and only aborts the run on fatal conditions.
package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/config"
	"github.com/agentic-research/jsonshape/internal/format"
	"github.com/agentic-research/jsonshape/internal/ingest"
	"github.com/agentic-research/jsonshape/internal/keymap"
	billy "github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// Operation names, as reported in api.Result.Mode.
const (
	ModeMinify = "minify"
	ModeScan   = "scan"
	ModeExpand = "expand"
	ModeNest   = "nest"
	ModeUnnest = "unnest"
	ModeVerify = "verify"
)

// Env is what every operation runs against.
type Env struct {
	FS     billy.Filesystem
	Config config.Config
	Logger *zap.Logger
	// Stdout receives output documents when no output location is given.
	Stdout io.Writer
}

func (e Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e Env) formatter() format.Formatter {
	return format.New(e.Config.CompactThreshold, e.Config.Indent)
}

// discover resolves inputs to documents, failing with ErrNoInputs when
// nothing matches.
func (e Env) discover(inputs []string, extensions, exclude []string) (ingest.Source, []string, error) {
	var src ingest.Source = ingest.NewFinder(e.FS, extensions, exclude, e.logger())
	files, err := src.Find(inputs)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", api.ErrNoInputs, strings.Join(inputs, ", "))
	}
	return src, files, nil
}

// openKeymap loads the keymap at path, treating a missing one as empty.
func (e Env) openKeymap(path string) (keymap.Store, []keymap.Entry, error) {
	store := keymap.OpenStore(e.FS, path)
	entries, err := keymap.LoadOrEmpty(store)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: keymap %s: %v", api.ErrConfig, path, err)
	}
	return store, entries, nil
}

// emit writes a rendered document to dir/name, or to Stdout when dir is
// empty. It returns the reported output name.
func (e Env) emit(dir, name, text string) (string, error) {
	if dir == "" {
		w := e.Stdout
		if w == nil {
			w = io.Discard
		}
		if _, err := io.WriteString(w, text+"\n"); err != nil {
			return "", fmt.Errorf("%w: write stdout: %v", api.ErrIO, err)
		}
		return "-", nil
	}
	path := filepath.Join(dir, name)
	if err := ingest.WriteFileAtomic(e.FS, path, []byte(text)); err != nil {
		return "", err
	}
	return name, nil
}

// checkMode rejects an unknown output mode before any work is done.
func checkMode(mode api.OutputMode) error {
	switch mode {
	case "", api.OutputSmart, api.OutputCompact, api.OutputPretty:
		return nil
	default:
		return fmt.Errorf("%w: unknown output mode %q", api.ErrConfig, mode)
	}
}

// cancelled reports a context cancellation between documents.
func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("cancelled: %w", ctx.Err())
	default:
		return nil
	}
}

// skip records a per-document failure on res. It reports false, recording
// nothing, when err must abort the whole run instead.
func skip(res *api.Result, logger *zap.Logger, path string, err error) bool {
	if api.IsFatal(err) {
		return false
	}
	logger.Warn("skipping file", zap.String("file", path), zap.Error(err))
	res.Results = append(res.Results, fileError(path, err))
	return true
}

func fileError(path string, err error) api.FileResult {
	return api.FileResult{File: filepath.Base(path), Status: api.StatusError, Error: err.Error()}
}

func savingsPct(before, after int64) *float64 {
	if before <= 0 {
		return nil
	}
	pct := keymap.Round1(100 * (1 - float64(after)/float64(before)))
	return &pct
}
