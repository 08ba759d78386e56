package repair

import (
	"testing"

	"github.com/agentic-research/jsonshape/internal/value"
)

func FuzzRepair(f *testing.F) {
	f.Add(`{"a": "//x", "b": [1, 2]}`)
	f.Add("{\n  'a': 1,\n  // c\n  \"b\": [2,]\n}")
	f.Add("[1\n2]")
	f.Add(`{"k": "/* not a comment */"}`)
	f.Add(``)

	f.Fuzz(func(t *testing.T, text string) {
		fixed, changes := Repair(text)

		// Valid documents pass through untouched.
		if _, err := value.Parse([]byte(text)); err == nil {
			if fixed != text || len(changes) != 0 {
				t.Fatalf("Repair changed valid JSON %q to %q (%v)", text, fixed, changes)
			}
		}

		// Decoding may fail on garbage, but must not panic.
		_, _ = DecodeAll([]byte(fixed), nil)
	})
}
