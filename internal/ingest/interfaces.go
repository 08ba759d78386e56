package ingest

import "github.com/agentic-research/jsonshape/internal/value"

// Walker abstracts over selector languages used to pick subtrees out of a
// document before keys are collected from them.
type Walker interface {
	// Query executes a selector against root and returns the matched subtrees.
	// An empty selector or "$" matches root itself.
	Query(root value.Value, selector string) ([]value.Value, error)
}

// Source supplies the ordered, de-duplicated documents a batch consumes.
// The core never walks directories itself; it only iterates this sequence.
type Source interface {
	// Find resolves input paths to candidate document paths.
	Find(paths []string) ([]string, error)
	// Read returns the raw document at path.
	Read(path string) (Document, error)
}
