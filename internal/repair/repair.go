// Package repair is a best-effort pre-pass that coaxes hand-edited,
// almost-JSON text into something the strict decoder accepts.
//
// It is heuristic and non-exhaustive: it can leave some malformed input
// unfixed and can occasionally "fix" input into a different document than
// the author meant. It runs on a token stream, so comment markers and
// commas inside string literals are never touched.
package repair

import (
	"strings"
	"unicode"
)

// Change labels reported by Repair, in the order the passes run.
const (
	ChangeBOM            = "bom"
	ChangeComments       = "comments"
	ChangeQuotes         = "quotes"
	ChangeTrailingCommas = "trailing-commas"
	ChangeDelimiters     = "delimiters"
)

const bom = "\ufeff"

// Repair applies every pass to text and returns the result together with
// the labels of the passes that changed something.
func Repair(text string) (string, []string) {
	var changes []string
	if strings.HasPrefix(text, bom) {
		text = strings.TrimLeft(text, bom)
		changes = append(changes, ChangeBOM)
	}

	toks := tokenize(text)
	for _, pass := range []struct {
		label string
		fn    func([]token) ([]token, bool)
	}{
		{ChangeComments, stripComments},
		{ChangeQuotes, requoteSingles},
		{ChangeTrailingCommas, dropTrailingCommas},
		{ChangeDelimiters, insertMissingCommas},
	} {
		var changed bool
		toks, changed = pass.fn(toks)
		if changed {
			changes = append(changes, pass.label)
		}
	}
	return join(toks), changes
}

type tokenKind uint8

const (
	tokSpace tokenKind = iota
	tokComment
	tokString       // double-quoted
	tokSingleString // single-quoted
	tokPunct        // one of {}[],:
	tokBare         // numbers, literals, anything else
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) []token {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			j := i
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			toks = append(toks, token{tokSpace, s[i:j]})
			i = j
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			j := strings.IndexByte(s[i:], '\n')
			if j < 0 {
				j = len(s) - i
			}
			toks = append(toks, token{tokComment, s[i : i+j]})
			i += j
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			j := strings.Index(s[i+2:], "*/")
			end := len(s)
			if j >= 0 {
				end = i + 2 + j + 2
			}
			toks = append(toks, token{tokComment, s[i:end]})
			i = end
		case c == '"' || c == '\'':
			j := scanString(s, i)
			kind := tokString
			if c == '\'' {
				kind = tokSingleString
			}
			toks = append(toks, token{kind, s[i:j]})
			i = j
		case strings.IndexByte("{}[],:", c) >= 0:
			toks = append(toks, token{tokPunct, s[i : i+1]})
			i++
		default:
			j := i + 1
			for j < len(s) && !isBareStop(s, j) {
				j++
			}
			toks = append(toks, token{tokBare, s[i:j]})
			i = j
		}
	}
	return toks
}

// scanString returns the index just past the string literal opening at i.
// An unterminated literal runs to the end of its line.
func scanString(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(s)
}

func isBareStop(s string, j int) bool {
	c := s[j]
	if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '"' || c == '\'' {
		return true
	}
	if strings.IndexByte("{}[],:", c) >= 0 {
		return true
	}
	return c == '/' && j+1 < len(s) && (s[j+1] == '/' || s[j+1] == '*')
}

func join(toks []token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.text)
	}
	return sb.String()
}

func stripComments(toks []token) ([]token, bool) {
	out := toks[:0:0]
	changed := false
	for _, t := range toks {
		if t.kind == tokComment {
			changed = true
			continue
		}
		out = append(out, t)
	}
	return out, changed
}

// requoteSingles rewrites 'text' as "text" when the body holds no double
// quote or backslash, so no escaping decisions are needed.
func requoteSingles(toks []token) ([]token, bool) {
	changed := false
	for i, t := range toks {
		if t.kind != tokSingleString || len(t.text) < 2 || !strings.HasSuffix(t.text, "'") {
			continue
		}
		body := t.text[1 : len(t.text)-1]
		if strings.ContainsAny(body, "\"\\") {
			continue
		}
		toks[i] = token{tokString, `"` + body + `"`}
		changed = true
	}
	return toks, changed
}

func dropTrailingCommas(toks []token) ([]token, bool) {
	out := toks[:0:0]
	changed := false
	for i, t := range toks {
		if t.kind == tokPunct && t.text == "," {
			if next := nextSignificant(toks, i+1); next >= 0 && isCloser(toks[next]) {
				changed = true
				continue
			}
		}
		out = append(out, t)
	}
	return out, changed
}

// insertMissingCommas adds a comma between a value that ends one line and a
// value that starts the next, e.g. two object members missing their
// separator. Top-level values are left apart for DecodeAll to merge.
func insertMissingCommas(toks []token) ([]token, bool) {
	out := make([]token, 0, len(toks))
	changed := false
	depth := 0
	for i, t := range toks {
		if t.kind == tokPunct {
			switch t.text {
			case "{", "[":
				depth++
			case "}", "]":
				depth--
			}
		}
		if t.kind == tokSpace && depth > 0 && i > 0 && toks[i-1].kind != tokSpace && endsValue(toks[i-1]) {
			if next := nextSignificant(toks, i); next >= 0 && startsValue(toks[next]) && hasNewline(toks[i:next]) {
				out = append(out, token{tokPunct, ","})
				changed = true
			}
		}
		out = append(out, t)
	}
	return out, changed
}

func hasNewline(gap []token) bool {
	for _, t := range gap {
		if strings.Contains(t.text, "\n") {
			return true
		}
	}
	return false
}

func nextSignificant(toks []token, from int) int {
	for j := from; j < len(toks); j++ {
		if toks[j].kind != tokSpace && toks[j].kind != tokComment {
			return j
		}
	}
	return -1
}

func isCloser(t token) bool {
	return t.kind == tokPunct && (t.text == "}" || t.text == "]")
}

func endsValue(t token) bool {
	switch t.kind {
	case tokString:
		return true
	case tokPunct:
		return t.text == "}" || t.text == "]"
	case tokBare:
		return isScalarWord(t.text)
	default:
		return false
	}
}

func startsValue(t token) bool {
	switch t.kind {
	case tokString:
		return true
	case tokPunct:
		return t.text == "{" || t.text == "["
	case tokBare:
		return isScalarWord(t.text)
	default:
		return false
	}
}

func isScalarWord(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	}
	r := rune(s[0])
	return unicode.IsDigit(r) || r == '-'
}
