package pipeline

import (
	"errors"
	"testing"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/keymap"
	"github.com/agentic-research/jsonshape/internal/transform"
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

func TestRunOrder(t *testing.T) {
	r := transform.DefaultReserved()
	in := mustParse(t, `[{"id": "a", "name": "x", "active": true, "note": null}, {"id": "b", "name": "y", "active": false}]`)

	res, err := Run(in, Steps{
		RemoveNulls:      true,
		CompressBooleans: true,
		Abbreviator:      keymap.NewAbbreviator(nil, r),
		Keyed:            true,
		KeyField:         "id",
		Reserved:         r,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{StepNullRemoval, StepBoolCompress, StepAbbrevKeys, StepToKeyed}, res.Applied)
	assert.Equal(t,
		`{"_schema":{"format":"keyed_json:i","key_field":"i","fields":["n","a"]},"a":["x",1],"b":["y",0]}`,
		value.Compact(res.Value))
	assert.True(t, res.Changed())
}

func TestRunNothingSelected(t *testing.T) {
	in := mustParse(t, `{"a": null}`)
	res, err := Run(in, Steps{Reserved: transform.DefaultReserved()})
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.True(t, value.Equal(in, res.Value))
}

func TestRunKeyedOnlyForArrays(t *testing.T) {
	res, err := Run(mustParse(t, `{"id": 1}`), Steps{Keyed: true, Reserved: transform.DefaultReserved()})
	require.NoError(t, err)
	assert.Empty(t, res.Applied)
}

func TestRunKeyFieldDefaults(t *testing.T) {
	r := transform.DefaultReserved()

	t.Run("first key of first record", func(t *testing.T) {
		res, err := Run(mustParse(t, `[{"sku": "p1", "qty": 2}]`), Steps{Keyed: true, Reserved: r})
		require.NoError(t, err)
		assert.Equal(t, `{"_schema":{"format":"keyed_json:sku","key_field":"sku","fields":["qty"]},"p1":[2]}`, value.Compact(res.Value))
	})

	t.Run("empty array uses the default field", func(t *testing.T) {
		res, err := Run(value.Array(), Steps{Keyed: true, Reserved: r})
		require.NoError(t, err)
		assert.Equal(t, `{"_schema":{"format":"keyed_json:id","key_field":"id","fields":[]}}`, value.Compact(res.Value))
	})

	t.Run("missing field is a schema mismatch", func(t *testing.T) {
		_, err := Run(mustParse(t, `[{"a": 1}]`), Steps{Keyed: true, KeyField: "id", Reserved: r})
		assert.True(t, errors.Is(err, api.ErrSchemaMismatch))
	})
}

func TestRunFlattenLast(t *testing.T) {
	r := transform.DefaultReserved()
	res, err := Run(mustParse(t, `[{"id": "a", "v": {"w": 1}}]`), Steps{Keyed: true, Flatten: true, Reserved: r})
	require.NoError(t, err)
	assert.Equal(t, []string{StepToKeyed, StepFlatten}, res.Applied)
	assert.Equal(t,
		`{"_schema_format":"keyed_json:id","_schema_key_field":"id","_schema_fields_0":"v","a_0_w":1}`,
		value.Compact(res.Value))
}

func TestExpandInvertsMinify(t *testing.T) {
	r := transform.DefaultReserved()
	in := mustParse(t, `[{"id": "a", "name": "x", "tags": {"primary": "p"}}, {"id": "b", "name": "y", "tags": {"primary": "q"}}]`)

	a := keymap.NewAbbreviator(nil, r)
	minified, err := Run(in, Steps{Abbreviator: a, Keyed: true, KeyField: "id", Reserved: r})
	require.NoError(t, err)

	// A fresh abbreviator over the persisted entries, as a later run would have.
	back, err := Expand(minified.Value, keymap.NewAbbreviator(a.Entries(), r), true, r)
	require.NoError(t, err)
	assert.Equal(t, []string{StepFromKeyed, StepExpandKeys}, back.Applied)
	assert.True(t, value.Equal(in, back.Value), value.Compact(back.Value))
}

func TestExpandWithoutKeyed(t *testing.T) {
	r := transform.DefaultReserved()
	a := keymap.NewAbbreviator([]keymap.Entry{{Alias: "n", Key: "name"}}, r)
	doc := mustParse(t, `{"_schema": {"key_field": "n"}, "x": ["v"]}`)

	res, err := Expand(doc, a, false, r)
	require.NoError(t, err)
	assert.Equal(t, []string{StepExpandKeys}, res.Applied)
	assert.Equal(t, `{"_schema":{"key_field":"n"},"x":["v"]}`, value.Compact(res.Value))

	t.Run("row keys are record ids", func(t *testing.T) {
		doc := mustParse(t, `{"_schema": {"key_field": "id", "fields": ["n"]}, "n": [{"n": 1}]}`)
		res, err := Expand(doc, a, false, r)
		require.NoError(t, err)
		assert.Equal(t, `{"_schema":{"key_field":"id","fields":["n"]},"n":[{"name":1}]}`, value.Compact(res.Value))
	})
}
