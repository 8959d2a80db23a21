package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// typeTag names the runtime Go type a value round-trips to. Values arrive
// from plugins and rules as untyped interface{}; unlike a ParamType-driven
// conversion (internal/paramvalidator), the store never has a ParamType
// graph in hand at the point it needs to persist a value, so it infers the
// tag from the value's own Go type at save time instead. The tag restores
// the kind of value, not its exact Go type: decodeValue returns integers as
// int64, unsigned integers as uint64 and floats as float64.
type typeTag string

const (
	tagBool    typeTag = "bool"
	tagInt     typeTag = "int"
	tagUint    typeTag = "uint"
	tagFloat   typeTag = "float"
	tagString  typeTag = "string"
	tagUUID    typeTag = "uuid"
	tagVariant typeTag = "variant" // arbitrary JSON-marshalable value (maps, slices)
)

// encodeValue tags and marshals a value for storage in the hub_entries.value
// jsonb column.
func encodeValue(v interface{}) (typeTag, []byte, error) {
	tag := tagVariant
	switch v.(type) {
	case bool:
		tag = tagBool
	case int, int8, int16, int32, int64:
		tag = tagInt
	case uint, uint8, uint16, uint32, uint64:
		tag = tagUint
	case float32, float64:
		tag = tagFloat
	case string:
		tag = tagString
	case uuid.UUID:
		tag = tagUUID
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("store: encode value: %w", err)
	}
	return tag, raw, nil
}

// decodeValue reverses encodeValue, restoring the concrete Go type the
// caller expects rather than json.Unmarshal's default float64/map[string]any.
func decodeValue(tag typeTag, raw []byte) (interface{}, error) {
	switch tag {
	case tagBool:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	case tagInt:
		var i int64
		err := json.Unmarshal(raw, &i)
		return i, err
	case tagUint:
		var u uint64
		err := json.Unmarshal(raw, &u)
		return u, err
	case tagFloat:
		var f float64
		err := json.Unmarshal(raw, &f)
		return f, err
	case tagString:
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case tagUUID:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return uuid.Parse(s)
	default:
		var v interface{}
		err := json.Unmarshal(raw, &v)
		return v, err
	}
}
