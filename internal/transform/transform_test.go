package transform

import (
	"testing"

	"github.com/agentic-research/jsonshape/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func TestRemoveNulls(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nested", `{"a": null, "b": {"c": null, "d": 1}, "e": [null, 2]}`, `{"b":{"d":1},"e":[2]}`},
		{"order kept", `{"z": 1, "y": null, "x": 2}`, `{"z":1,"x":2}`},
		{"emptied containers stay", `{"a": {"b": null}, "c": [null]}`, `{"a":{},"c":[]}`},
		{"scalar", `null`, `null`},
		{"false and zero survive", `[false, 0, "", null]`, `[false,0,""]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, value.Compact(RemoveNulls(mustParse(t, tt.in))))
		})
	}
}

func TestCompressBooleans(t *testing.T) {
	got := CompressBooleans(mustParse(t, `{"a": true, "b": [false, "true", 1], "c": {"d": null}}`))
	assert.Equal(t, `{"a":1,"b":[0,"true",1],"c":{"d":null}}`, value.Compact(got))
}

func TestFlatten(t *testing.T) {
	r := DefaultReserved()

	t.Run("paths", func(t *testing.T) {
		got := Flatten(mustParse(t, `{"a": {"b": 1, "c": [10, {"d": 2}]}, "e": "x"}`), r)
		assert.Equal(t, `{"a_b":1,"a_c_0":10,"a_c_1_d":2,"e":"x"}`, value.Compact(got))
	})

	t.Run("array root", func(t *testing.T) {
		got := Flatten(mustParse(t, `[{"a": 1}, 2]`), r)
		assert.Equal(t, `{"0_a":1,"1":2}`, value.Compact(got))
	})

	t.Run("scalar root", func(t *testing.T) {
		got := Flatten(value.Int(7), r)
		assert.Equal(t, `{"":7}`, value.Compact(got))
	})

	t.Run("empty containers vanish", func(t *testing.T) {
		got := Flatten(mustParse(t, `{"a": {}, "b": [], "c": 1}`), r)
		assert.Equal(t, `{"c":1}`, value.Compact(got))
	})

	t.Run("separator in keys is ambiguous", func(t *testing.T) {
		got := Flatten(mustParse(t, `{"a_b": 1, "a": {"b": 2}}`), r)
		assert.Equal(t, `{"a_b":2}`, value.Compact(got))
	})
}

func TestUnnest(t *testing.T) {
	r := DefaultReserved()

	t.Run("skips reserved keys", func(t *testing.T) {
		in := `{"manifest": {"x_total": 3}, "__LENGTH__": 2, "x": {"a": 1, "__LENGTH__": 1}, "_meta": 5}`
		assert.Equal(t, `{"x_a":1}`, value.Compact(Unnest(mustParse(t, in), r)))
	})

	t.Run("private-only objects are leaves", func(t *testing.T) {
		in := `{"x": {"_a": 1, "_b": 2}, "y": {}}`
		assert.Equal(t, `{"x":{"_a":1,"_b":2},"y":{}}`, value.Compact(Unnest(mustParse(t, in), r)))
	})

	t.Run("member arrays are leaves", func(t *testing.T) {
		in := `{"l": [1, {"a": 2}]}`
		assert.Equal(t, `{"l":[1,{"a":2}]}`, value.Compact(Unnest(mustParse(t, in), r)))
	})

	t.Run("root array descends", func(t *testing.T) {
		in := `[1, {"a": 2}, [3]]`
		assert.Equal(t, `{"0":1,"1_a":2,"2_0":3}`, value.Compact(Unnest(mustParse(t, in), r)))
	})

	t.Run("scalar root", func(t *testing.T) {
		assert.Equal(t, `{"":"s"}`, value.Compact(Unnest(value.String("s"), r)))
	})
}

func TestReserved(t *testing.T) {
	r := DefaultReserved()
	assert.True(t, r.IsPrivate("_schema"))
	assert.False(t, r.IsPrivate("schema"))
	assert.True(t, r.IsMarker("__LENGTH__"))
	assert.True(t, r.IsMarker("manifest"))
	assert.Equal(t, "a", r.Join("", "a"))
	assert.Equal(t, "a_b", r.Join("a", "b"))

	r.Prefix = ""
	assert.False(t, r.IsPrivate("_x"))
}
