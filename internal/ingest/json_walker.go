package ingest

import (
	"fmt"

	"github.com/agentic-research/jsonshape/internal/value"
	"github.com/ohler55/ojg/jp"
)

// JSONWalker implements Walker with JSONPath selectors.
type JSONWalker struct{}

func NewJSONWalker() *JSONWalker {
	return &JSONWalker{}
}

// Query implements Walker.
func (w *JSONWalker) Query(root value.Value, selector string) ([]value.Value, error) {
	if selector == "" || selector == "$" {
		return []value.Value{root}, nil
	}

	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}

	// jp works on the generic form; member order inside matches is lost,
	// which is fine for key collection.
	results := x.Get(value.ToAny(root))

	matches := make([]value.Value, len(results))
	for i, r := range results {
		matches[i] = value.FromAny(r)
	}
	return matches, nil
}
