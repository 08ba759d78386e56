package batch

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/ingest"
	"github.com/agentic-research/jsonshape/internal/repair"
	"github.com/agentic-research/jsonshape/internal/value"
	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"
)

// Verify checks that every JSON input parses strictly. With opts.AutoFix a
// failing file is repaired and, if the repair parses, written back in
// place. The exit code is 1 when any file still fails.
func Verify(ctx context.Context, opts api.Options, env Env) *api.Result {
	logger := env.logger()
	finder, files, err := env.discover(opts.Inputs, []string{".json"}, nil)
	if err != nil {
		return api.ErrorResult(ModeVerify, err)
	}

	res := &api.Result{Status: api.StatusSuccess, Mode: ModeVerify}
	for _, path := range files {
		if err := cancelled(ctx); err != nil {
			return api.ErrorResult(ModeVerify, err)
		}
		doc, err := finder.Read(path)
		if err != nil {
			res.Results = append(res.Results, api.FileResult{
				File:    filepath.Base(path),
				Status:  api.VerifyFail,
				Message: "SYSTEM: " + err.Error(),
			})
			continue
		}
		fr := audit(env, doc, opts.AutoFix)
		if fr.Status == api.VerifyFail {
			logger.Warn("verify failed", zap.String("file", path), zap.String("reason", fr.Message))
		}
		res.Results = append(res.Results, fr)
	}

	res.FilesProcessed = len(files)
	res.Tally()
	if res.Stats.Failed > 0 {
		res.ExitCode = 1
	}
	return res
}

func audit(env Env, doc ingest.Document, fix bool) api.FileResult {
	fr := api.FileResult{File: filepath.Base(doc.Path), Status: api.VerifyPass}
	if _, err := value.Parse(doc.Data); err == nil {
		return fr
	}

	diagnostic := syntaxError(doc.Data)
	if !fix {
		fr.Status, fr.Message = api.VerifyFail, diagnostic
		return fr
	}
	fixed, changes := repair.Repair(string(doc.Data))
	if _, err := value.Parse([]byte(fixed)); err != nil {
		fr.Status, fr.Message = api.VerifyFail, diagnostic
		return fr
	}
	if err := ingest.WriteFileAtomic(env.FS, doc.Path, []byte(fixed)); err != nil {
		fr.Status, fr.Message = api.VerifyFail, "SYSTEM: "+err.Error()
		return fr
	}
	fr.Status = api.VerifyFixed
	fr.Message = "REPAIRED: " + strings.Join(changes, ", ")
	fr.Steps = changes
	return fr
}

// syntaxError describes why data is not valid JSON, with the position
// the parser stopped at.
func syntaxError(data []byte) string {
	if _, err := oj.ParseString(string(data)); err != nil {
		return "SYNTAX: " + err.Error()
	}
	_, err := value.Parse(data)
	return "SYNTAX: " + err.Error()
}
