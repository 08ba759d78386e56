package value

import (
	"strings"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// Compact renders v as minimal single-line JSON.
func Compact(v Value) string {
	return string(AppendCompact(nil, v))
}

// AppendCompact appends the minimal rendering of v to dst.
func AppendCompact(dst []byte, v Value) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		return append(dst, v.s...)
	case KindString:
		return AppendString(dst, v.s)
	case KindArray:
		dst = append(dst, '[')
		for i, item := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendCompact(dst, item)
		}
		return append(dst, ']')
	case KindObject:
		dst = append(dst, '{')
		first := true
		v.obj.Range(func(k string, item Value) bool {
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = AppendString(dst, k)
			dst = append(dst, ':')
			dst = AppendCompact(dst, item)
			return true
		})
		return append(dst, '}')
	default:
		return append(dst, "null"...)
	}
}

// Indent renders v with one member per line, nested levels indented by
// indent, and ": " between keys and values.
func Indent(v Value, indent string) string {
	var sb strings.Builder
	writeIndent(&sb, v, indent, 0)
	return sb.String()
}

func writeIndent(sb *strings.Builder, v Value, indent string, depth int) {
	switch v.kind {
	case KindArray:
		if len(v.arr) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteString("[")
		for i, item := range v.arr {
			if i > 0 {
				sb.WriteString(",")
			}
			newline(sb, indent, depth+1)
			writeIndent(sb, item, indent, depth+1)
		}
		newline(sb, indent, depth)
		sb.WriteString("]")
	case KindObject:
		if v.obj.Len() == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteString("{")
		first := true
		v.obj.Range(func(k string, item Value) bool {
			if !first {
				sb.WriteString(",")
			}
			first = false
			newline(sb, indent, depth+1)
			sb.Write(AppendString(nil, k))
			sb.WriteString(": ")
			writeIndent(sb, item, indent, depth+1)
			return true
		})
		newline(sb, indent, depth)
		sb.WriteString("}")
	default:
		sb.Write(AppendCompact(nil, v))
	}
}

func newline(sb *strings.Builder, indent string, depth int) {
	sb.WriteByte('\n')
	for range depth {
		sb.WriteString(indent)
	}
}

// AppendString appends s as a quoted JSON string. Non-ASCII text is kept as
// UTF-8 and HTML characters are not escaped.
func AppendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				dst = append(dst, s[start:i]...)
				dst = append(dst, `�`...)
				i += size
				start = i
				continue
			}
			i += size
			continue
		}
		if c >= 0x20 && c != '"' && c != '\\' {
			i++
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		}
		i++
		start = i
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}
