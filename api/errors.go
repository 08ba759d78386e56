package api

import "errors"

// Sentinel errors shared by every operation. Callers wrap them with context
// and test with errors.Is.
var (
	// ErrParse is returned when a document is malformed, even after repair.
	ErrParse = errors.New("parse error")

	// ErrSchemaMismatch is returned when data does not fit the shape a
	// transform requires (non-object records, missing key field).
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrConfig is returned for invalid options: overlapping marker sets,
	// a missing keymap where one is required, malformed wrapper JSON.
	ErrConfig = errors.New("configuration error")

	// ErrIO is returned when a path cannot be read or written.
	ErrIO = errors.New("i/o error")

	// ErrNoInputs is returned when discovery finds nothing to process.
	ErrNoInputs = errors.New("no input files found")
)

// IsFatal reports whether err must abort a whole invocation rather than
// being recorded against a single document.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfig) || errors.Is(err, ErrNoInputs)
}
