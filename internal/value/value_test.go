package value

import (
	"testing"

	"github.com/agentic-research/jsonshape/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("keeps member order", func(t *testing.T) {
		v, err := Parse([]byte(`{"z": 1, "a": {"y": true, "b": null}, "m": [1, "two", 3.50]}`))
		require.NoError(t, err)
		require.Equal(t, KindObject, v.Kind())
		assert.Equal(t, []string{"z", "a", "m"}, v.Object().Keys())
		assert.Equal(t, `{"z":1,"a":{"y":true,"b":null},"m":[1,"two",3.50]}`, Compact(v))
	})

	t.Run("number literals survive", func(t *testing.T) {
		v, err := Parse([]byte(`[1.0, 1e3, -0, 12345678901234567890]`))
		require.NoError(t, err)
		assert.Equal(t, `[1.0,1e3,-0,12345678901234567890]`, Compact(v))
	})

	t.Run("duplicate key keeps first position, last value", func(t *testing.T) {
		v, err := Parse([]byte(`{"a": 1, "b": 2, "a": 3}`))
		require.NoError(t, err)
		assert.Equal(t, `{"a":3,"b":2}`, Compact(v))
	})

	t.Run("scalar root", func(t *testing.T) {
		v, err := Parse([]byte(`  "hi"  `))
		require.NoError(t, err)
		assert.Equal(t, "hi", v.AsString())
	})

	t.Run("malformed", func(t *testing.T) {
		for _, in := range []string{``, `{`, `{"a" 1}`, `[1,]`, `{"a":1} {"b":2}`, `{"a":1} x`} {
			_, err := Parse([]byte(in))
			assert.ErrorIs(t, err, api.ErrParse, "input %q", in)
		}
	})
}

func TestParsePrefix(t *testing.T) {
	data := []byte(`{"a":1}  {"b":2}`)
	v, n, err := ParsePrefix(data)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, `{"a":1}`, Compact(v))

	v, _, err = ParsePrefix(data[n:])
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, Compact(v))
}

func TestAppendString(t *testing.T) {
	assert.Equal(t, `"a\"b\\c\nd\te"`, string(AppendString(nil, "a\"b\\c\nd\te")))
	assert.Equal(t, `"\u0001"`, string(AppendString(nil, "\x01")))
	assert.Equal(t, `"<ü>&"`, string(AppendString(nil, "<ü>&")))
}

func TestIndent(t *testing.T) {
	v, err := Parse([]byte(`{"a":[1,2],"b":{},"c":[]}`))
	require.NoError(t, err)
	want := "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {},\n  \"c\": []\n}"
	assert.Equal(t, want, Indent(v, "  "))
}

func TestEqual(t *testing.T) {
	a, _ := Parse([]byte(`{"a":1,"b":[true,null]}`))
	b, _ := Parse([]byte(`{"a":1,"b":[true,null]}`))
	reordered, _ := Parse([]byte(`{"b":[true,null],"a":1}`))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, reordered))
	assert.False(t, Equal(Number("1"), Number("1.0")))
	assert.True(t, Equal(Null(), Value{}))
}

func TestText(t *testing.T) {
	assert.Equal(t, "abc", String("abc").Text())
	assert.Equal(t, "42", Int(42).Text())
	assert.Equal(t, "true", Bool(true).Text())
	assert.Equal(t, "null", Null().Text())
	assert.Equal(t, `[1]`, Array(Int(1)).Text())
}

func TestObject(t *testing.T) {
	o := NewObject()
	o.Set("b", Int(1))
	o.Set("a", Int(2))
	o.Set("b", Int(3))
	assert.Equal(t, []string{"b", "a"}, o.Keys())

	got, ok := o.Delete("b")
	require.True(t, ok)
	assert.Equal(t, "3", got.Literal())
	assert.False(t, o.Has("b"))

	var nilObj *Object
	assert.Equal(t, 0, nilObj.Len())
	assert.Empty(t, nilObj.Keys())
}

func TestAnyRoundTrip(t *testing.T) {
	v, err := Parse([]byte(`{"b":[1,2.5,"x"],"a":{"t":true,"n":null}}`))
	require.NoError(t, err)

	back := FromAny(ToAny(v))
	assert.Equal(t, `{"a":{"n":null,"t":true},"b":[1,2.5,"x"]}`, Compact(back))
}
