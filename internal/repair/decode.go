package repair

import (
	"fmt"

	"github.com/agentic-research/jsonshape/api"
	"github.com/agentic-research/jsonshape/internal/value"
	"go.uber.org/zap"
)

// DecodeAll decodes every top-level object or array in data, in order.
// Garbage between values is skipped one byte at a time and empty
// containers are dropped. A single value is returned as is. Several values
// are shallow-merged, later keys overriding earlier ones; arrays among
// them are skipped, and it is an error when none of them is an object.
func DecodeAll(data []byte, logger *zap.Logger) (value.Value, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var found []value.Value
	for pos := 0; pos < len(data); {
		if c := data[pos]; c != '{' && c != '[' {
			pos++
			continue
		}
		v, n, err := value.ParsePrefix(data[pos:])
		if err != nil || n == 0 {
			pos++
			continue
		}
		pos += n
		if v.Len() > 0 {
			found = append(found, v)
		}
	}

	switch len(found) {
	case 0:
		return value.Value{}, fmt.Errorf("%w: no JSON object or array found", api.ErrParse)
	case 1:
		return found[0], nil
	}

	var merged *value.Object
	for i, v := range found {
		if v.Kind() != value.KindObject {
			logger.Debug("skipping non-object value", zap.Int("index", i+1), zap.Int("values", len(found)))
			continue
		}
		if merged == nil {
			merged = value.NewObject()
		}
		merged.Merge(v.Object())
	}
	if merged == nil {
		return value.Value{}, fmt.Errorf("%w: none of %d values is an object", api.ErrParse, len(found))
	}
	return value.ObjectOf(merged), nil
}

// Decode repairs text and decodes the result. The change labels are
// returned even when decoding fails.
func Decode(data []byte, logger *zap.Logger) (value.Value, []string, error) {
	fixed, changes := Repair(string(data))
	v, err := DecodeAll([]byte(fixed), logger)
	return v, changes, err
}
