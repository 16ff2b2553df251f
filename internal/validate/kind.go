package validate

import "encoding/json"

// Kind is the JSON-level type of a parameter value.
type Kind string

const (
	KindBoolean Kind = "boolean"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindNull    Kind = "null"
)

// KindOf classifies a value as produced by encoding/json decoding into any.
// Go values outside the JSON data model are reported as objects.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case string:
		return KindString
	case float64, float32, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case []any, []bool, []string, []float64, []int:
		return KindArray
	default:
		return KindObject
	}
}
