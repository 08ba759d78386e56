// Package format serializes value trees for output. Smart formatting keeps
// small containers on one line and breaks large ones across lines, deciding
// per node rather than for the document as a whole.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/value"
)

// DefaultThreshold is the longest single-line rendering, in characters,
// that smart formatting keeps on one line.
const DefaultThreshold = 80

// Formatter renders values. The zero Formatter always expands containers
// and indents by nothing; use New.
type Formatter struct {
	Threshold int
	Indent    string
}

// New returns a formatter with the given threshold and indent width.
func New(threshold, indent int) Formatter {
	return Formatter{Threshold: threshold, Indent: strings.Repeat(" ", indent)}
}

// Smart renders v with the default two-space indent.
func Smart(v value.Value, threshold int) string {
	return New(threshold, 2).Smart(v)
}

// Smart renders v. A container whose compact form is at most Threshold
// characters long is emitted compact; otherwise each member goes on its own
// line and is tested against the threshold in turn. Empty containers are
// always {} or []. A non-positive threshold expands every non-empty
// container.
func (f Formatter) Smart(v value.Value) string {
	var sb strings.Builder
	f.writeSmart(&sb, v, 0)
	return sb.String()
}

func (f Formatter) writeSmart(sb *strings.Builder, v value.Value, depth int) {
	if !v.IsContainer() || v.Len() == 0 {
		sb.WriteString(value.Compact(v))
		return
	}
	compact := value.Compact(v)
	if utf8.RuneCountInString(compact) <= f.Threshold {
		sb.WriteString(compact)
		return
	}

	opening, closing := "[", "]"
	if v.Kind() == value.KindObject {
		opening, closing = "{", "}"
	}
	sb.WriteString(opening)
	first := true
	member := func(key *string, child value.Value) {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		f.newline(sb, depth+1)
		if key != nil {
			sb.Write(value.AppendString(nil, *key))
			sb.WriteString(": ")
		}
		f.writeSmart(sb, child, depth+1)
	}
	if v.Kind() == value.KindObject {
		v.Object().Range(func(k string, child value.Value) bool {
			member(&k, child)
			return true
		})
	} else {
		for _, item := range v.Items() {
			member(nil, item)
		}
	}
	f.newline(sb, depth)
	sb.WriteString(closing)
}

func (f Formatter) newline(sb *strings.Builder, depth int) {
	sb.WriteByte('\n')
	for range depth {
		sb.WriteString(f.Indent)
	}
}

// Render serializes v in the given mode. An empty mode means smart.
func (f Formatter) Render(v value.Value, mode api.OutputMode) (string, error) {
	switch mode {
	case api.OutputSmart, "":
		return f.Smart(v), nil
	case api.OutputCompact:
		return value.Compact(v), nil
	case api.OutputPretty:
		return value.Indent(v, f.Indent), nil
	default:
		return "", fmt.Errorf("%w: unknown output mode %q", api.ErrConfig, mode)
	}
}
