package batch

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/ingest"
	"github.com/agentic-research/jsonshape/internal/nest"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

// Nest merges the JSON inputs into one annotated tree and writes it to
// opts.OutputFile, or to Stdout. Sources that fail to decode are skipped
// and reported; bad options abort before anything is read.
func Nest(ctx context.Context, opts api.Options, env Env) *api.Result {
	logger := env.logger()
	wrapper, err := nest.ParseWrapper(opts.Wrap)
	if err != nil {
		return api.ErrorResult(ModeNest, err)
	}
	prefix := opts.AutoSumPrefix
	if prefix == "" {
		prefix = env.Config.AutoSumPrefix
	}
	nopts := nest.Options{
		Length:        opts.Length,
		Sum:           opts.Sum,
		Identity:      identity(env, opts),
		AutoSumPrefix: prefix,
		Wrapper:       wrapper,
		Flat:          opts.Flat,
		Reserved:      env.Config.Reserved,
		Logger:        logger,
	}
	if err := nopts.Validate(); err != nil {
		return api.ErrorResult(ModeNest, err)
	}
	mode := opts.Mode
	if mode == "" {
		mode = api.OutputPretty
	}
	if err := checkMode(mode); err != nil {
		return api.ErrorResult(ModeNest, err)
	}
	f := env.formatter()

	finder, files, err := env.discover(opts.Inputs, []string{".json"}, env.Config.Exclude)
	if err != nil {
		return api.ErrorResult(ModeNest, err)
	}

	res := &api.Result{Status: api.StatusSuccess, Mode: ModeNest}
	docs := make([]ingest.Document, 0, len(files))
	for _, path := range files {
		if err := cancelled(ctx); err != nil {
			return api.ErrorResult(ModeNest, err)
		}
		doc, err := finder.Read(path)
		if err != nil {
			logger.Warn("skipping source", zap.String("file", path), zap.Error(err))
			res.Results = append(res.Results, fileError(path, err))
			continue
		}
		docs = append(docs, doc)
	}

	merged, err := nest.Nest(docs, nopts)
	if err != nil {
		return api.ErrorResult(ModeNest, err)
	}
	for _, s := range merged.Skipped {
		res.Results = append(res.Results, fileError(s.Path, s.Err))
	}
	for _, path := range slices.Sorted(maps.Keys(merged.Repaired)) {
		logger.Info("repaired source", zap.String("file", path), zap.Strings("changes", merged.Repaired[path]))
	}

	text, err := f.Render(merged.Tree, mode)
	if err != nil {
		return api.ErrorResult(ModeNest, err)
	}
	out, err := writeSingle(env, opts.OutputFile, text)
	if err != nil {
		return api.ErrorResult(ModeNest, err)
	}

	res.FilesMerged = merged.Merged
	res.FilesProcessed = len(files)
	res.OutputFile = out
	res.Tally()
	res.Stats.Succeeded = merged.Merged
	return res
}

// identity names the merge root: the first input when it is a directory,
// else the output file's stem.
func identity(env Env, opts api.Options) string {
	if len(opts.Inputs) > 0 {
		if info, err := env.FS.Stat(opts.Inputs[0]); err == nil && info.IsDir() {
			return filepath.Base(filepath.Clean(opts.Inputs[0]))
		}
	}
	if opts.OutputFile == "" {
		return ""
	}
	base := filepath.Base(opts.OutputFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Unnest flattens exactly one document to root-level joined keys. Unlike
// the batch operations, an unreadable or malformed input fails the call.
func Unnest(ctx context.Context, opts api.Options, env Env) *api.Result {
	if len(opts.Inputs) != 1 {
		return api.ErrorResult(ModeUnnest, fmt.Errorf("%w: unnest takes exactly one input, got %d", api.ErrConfig, len(opts.Inputs)))
	}
	if err := cancelled(ctx); err != nil {
		return api.ErrorResult(ModeUnnest, err)
	}
	path := opts.Inputs[0]
	data, err := util.ReadFile(env.FS, path)
	if err != nil {
		return api.ErrorResult(ModeUnnest, fmt.Errorf("%w: read %s: %v", api.ErrIO, path, err))
	}
	flat, err := nest.Unnest(data, env.Config.Reserved)
	if err != nil {
		return api.ErrorResult(ModeUnnest, fmt.Errorf("%s: %w", path, err))
	}

	mode := opts.Mode
	if mode == "" {
		mode = api.OutputPretty
	}
	text, err := env.formatter().Render(flat, mode)
	if err != nil {
		return api.ErrorResult(ModeUnnest, err)
	}
	out, err := writeSingle(env, opts.OutputFile, text)
	if err != nil {
		return api.ErrorResult(ModeUnnest, err)
	}
	return &api.Result{
		Status:         api.StatusSuccess,
		Mode:           ModeUnnest,
		FilesProcessed: 1,
		KeysFlattened:  flat.Len(),
		OutputFile:     out,
	}
}

// writeSingle writes a one-document result to path, or to Stdout when
// path is empty.
func writeSingle(env Env, path, text string) (string, error) {
	if path == "" {
		return env.emit("", "", text)
	}
	if err := ingest.WriteFileAtomic(env.FS, path, []byte(text)); err != nil {
		return "", err
	}
	return path, nil
}
