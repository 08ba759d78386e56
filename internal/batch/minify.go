package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/ingest"
	"github.com/agentic-research/jsonshape/internal/keymap"
	"github.com/agentic-research/jsonshape/internal/pipeline"
	"github.com/agentic-research/jsonshape/internal/value"
	"github.com/ohler55/ojg/jp"
	"go.uber.org/zap"
)

// Minify runs the selected pipeline steps over every input and writes
// <stem>-out.json per document into opts.OutputDir, or to Stdout. With a
// keymap path, keys are abbreviated and the keymap is rewritten in full
// once all documents are done.
func Minify(ctx context.Context, opts api.Options, env Env) *api.Result {
	logger := env.logger()
	if err := checkMode(opts.Mode); err != nil {
		return api.ErrorResult(ModeMinify, err)
	}
	finder, files, err := env.discover(opts.Inputs, env.Config.Extensions, nil)
	if err != nil {
		return api.ErrorResult(ModeMinify, err)
	}

	var store keymap.Store
	var abbrev *keymap.Abbreviator
	if opts.KeymapPath != "" {
		var entries []keymap.Entry
		store, entries, err = env.openKeymap(opts.KeymapPath)
		if err != nil {
			return api.ErrorResult(ModeMinify, err)
		}
		abbrev = keymap.NewAbbreviator(entries, env.Config.Reserved)
	}

	steps := pipeline.Steps{
		RemoveNulls:      opts.RemoveNulls,
		CompressBooleans: opts.CompressBooleans,
		Abbreviator:      abbrev,
		Keyed:            opts.Keyed,
		KeyField:         opts.KeyField,
		Flatten:          opts.Flatten,
		Reserved:         env.Config.Reserved,
	}
	f := env.formatter()

	res := &api.Result{Status: api.StatusSuccess, Mode: ModeMinify}
	var total float64
	var measured int
	for _, path := range files {
		if err := cancelled(ctx); err != nil {
			return api.ErrorResult(ModeMinify, err)
		}

		doc, err := finder.Read(path)
		if err != nil {
			if !skip(res, logger, path, err) {
				return api.ErrorResult(ModeMinify, err)
			}
			continue
		}
		v, err := ingest.Load(doc)
		if err != nil {
			if !skip(res, logger, path, err) {
				return api.ErrorResult(ModeMinify, err)
			}
			continue
		}
		out, err := pipeline.Run(v, steps)
		if err != nil {
			if !skip(res, logger, path, err) {
				return api.ErrorResult(ModeMinify, err)
			}
			continue
		}

		// An untouched JSON document keeps its bytes unless a mode asks
		// for reformatting.
		var text string
		if !out.Changed() && opts.Mode == "" && doc.Data != nil && doc.Ext == ".json" {
			text = string(doc.Data)
		} else if text, err = f.Render(out.Value, opts.Mode); err != nil {
			return api.ErrorResult(ModeMinify, err)
		}

		name, err := env.emit(opts.OutputDir, doc.Name+"-out.json", text)
		if err != nil {
			if !skip(res, logger, path, err) {
				return api.ErrorResult(ModeMinify, err)
			}
			continue
		}
		fr := api.FileResult{
			File:       filepath.Base(path),
			Output:     name,
			SavingsPct: savingsPct(doc.Size, int64(len(text))),
			Steps:      out.Applied,
			Status:     api.StatusSuccess,
		}
		if fr.SavingsPct != nil {
			total += *fr.SavingsPct
			measured++
		}
		logger.Debug("minified", zap.String("file", path), zap.Strings("steps", out.Applied))
		res.Results = append(res.Results, fr)
	}

	res.FilesProcessed = len(files)
	if measured > 0 {
		res.AvgSavingsPct = keymap.Round1(total / float64(measured))
	}
	if abbrev != nil {
		if err := store.Save(abbrev.Entries()); err != nil {
			return api.ErrorResult(ModeMinify, fmt.Errorf("save keymap: %w", err))
		}
		res.KeymapFile = store.Location()
		res.KeymapEntries = abbrev.Len()
		res.NewEntries = len(abbrev.NewEntries())
		res.Collisions = abbrev.Collisions()
	}
	res.Tally()
	return res
}

// Scan collects every key of every input, optionally restricted to the
// subtrees a JSONPath selector matches, and extends the keymap with
// aliases for them. The keymap is saved only when a path is given.
func Scan(ctx context.Context, opts api.Options, env Env) *api.Result {
	logger := env.logger()
	if opts.Selector != "" && opts.Selector != "$" {
		if _, err := jp.ParseString(opts.Selector); err != nil {
			return api.ErrorResult(ModeScan, fmt.Errorf("%w: invalid selector %q: %v", api.ErrConfig, opts.Selector, err))
		}
	}
	finder, files, err := env.discover(opts.Inputs, env.Config.Extensions, nil)
	if err != nil {
		return api.ErrorResult(ModeScan, err)
	}

	var store keymap.Store
	var existing []keymap.Entry
	if opts.KeymapPath != "" {
		if store, existing, err = env.openKeymap(opts.KeymapPath); err != nil {
			return api.ErrorResult(ModeScan, err)
		}
	}

	r := env.Config.Reserved
	var walker ingest.Walker = ingest.NewJSONWalker()
	res := &api.Result{Status: api.StatusSuccess, Mode: ModeScan}
	keys := make(map[string]struct{})
	for _, path := range files {
		if err := cancelled(ctx); err != nil {
			return api.ErrorResult(ModeScan, err)
		}

		doc, err := finder.Read(path)
		if err == nil {
			var matches []value.Value
			matches, err = query(walker, doc, opts.Selector)
			for _, m := range matches {
				for _, k := range keymap.ExtractKeys(m, r) {
					keys[k] = struct{}{}
				}
			}
		}
		if err != nil {
			if !skip(res, logger, path, err) {
				return api.ErrorResult(ModeScan, err)
			}
			continue
		}
		res.Results = append(res.Results, api.FileResult{File: filepath.Base(path), Status: api.StatusSuccess})
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	abbrev := keymap.Generate(existing, sorted, r)
	if store != nil {
		if err := store.Save(abbrev.Entries()); err != nil {
			return api.ErrorResult(ModeScan, fmt.Errorf("save keymap: %w", err))
		}
		res.KeymapFile = store.Location()
	}

	res.FilesProcessed = len(files)
	res.KeysFound = len(sorted)
	res.KeymapEntries = abbrev.Len()
	res.NewEntries = len(abbrev.NewEntries())
	res.SavingsPct = keymap.Savings(abbrev.Entries())
	res.Collisions = abbrev.Collisions()
	res.Tally()
	return res
}

func query(w ingest.Walker, doc ingest.Document, selector string) ([]value.Value, error) {
	v, err := ingest.Load(doc)
	if err != nil {
		return nil, err
	}
	return w.Query(v, selector)
}

// Expand reverses minify: keyed documents back to records when
// opts.FromKeyed is set, then aliases back to long keys. The keymap must
// exist. Output goes to <stem>-expanded.json.
func Expand(ctx context.Context, opts api.Options, env Env) *api.Result {
	logger := env.logger()
	if opts.KeymapPath == "" {
		return api.ErrorResult(ModeExpand, fmt.Errorf("%w: expand requires a keymap", api.ErrConfig))
	}
	store := keymap.OpenStore(env.FS, opts.KeymapPath)
	entries, err := store.Load()
	if err != nil {
		if errors.Is(err, keymap.ErrNotFound) {
			return api.ErrorResult(ModeExpand, fmt.Errorf("%w: keymap %s does not exist", api.ErrConfig, opts.KeymapPath))
		}
		return api.ErrorResult(ModeExpand, fmt.Errorf("%w: keymap %s: %v", api.ErrConfig, opts.KeymapPath, err))
	}
	if err := checkMode(opts.Mode); err != nil {
		return api.ErrorResult(ModeExpand, err)
	}
	finder, files, err := env.discover(opts.Inputs, []string{".json"}, nil)
	if err != nil {
		return api.ErrorResult(ModeExpand, err)
	}

	r := env.Config.Reserved
	abbrev := keymap.NewAbbreviator(entries, r)
	f := env.formatter()
	res := &api.Result{Status: api.StatusSuccess, Mode: ModeExpand, KeymapFile: store.Location()}
	for _, path := range files {
		if err := cancelled(ctx); err != nil {
			return api.ErrorResult(ModeExpand, err)
		}

		doc, err := finder.Read(path)
		if err != nil {
			if !skip(res, logger, path, err) {
				return api.ErrorResult(ModeExpand, err)
			}
			continue
		}
		v, err := ingest.Load(doc)
		if err != nil {
			if !skip(res, logger, path, err) {
				return api.ErrorResult(ModeExpand, err)
			}
			continue
		}
		out, err := pipeline.Expand(v, abbrev, opts.FromKeyed, r)
		if err != nil {
			if !skip(res, logger, path, err) {
				return api.ErrorResult(ModeExpand, err)
			}
			continue
		}
		text, err := f.Render(out.Value, opts.Mode)
		if err != nil {
			return api.ErrorResult(ModeExpand, err)
		}
		name, err := env.emit(opts.OutputDir, doc.Name+"-expanded.json", text)
		if err != nil {
			if !skip(res, logger, path, err) {
				return api.ErrorResult(ModeExpand, err)
			}
			continue
		}
		res.Results = append(res.Results, api.FileResult{
			File:   filepath.Base(path),
			Output: name,
			Steps:  out.Applied,
			Status: api.StatusSuccess,
		})
	}

	res.FilesProcessed = len(files)
	res.KeymapEntries = abbrev.Len()
	res.Tally()
	return res
}
