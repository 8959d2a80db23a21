// Package paramvalidator validates a mapping of parameter-id -> value
// against a list of ParamType descriptors: semantic-type conversion,
// numeric/variant range checks, allow-list membership, and read-only
// enforcement, returning a small structured error on the first failure.
package paramvalidator

import (
	"fmt"
	"math"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// Source distinguishes who supplied the params being validated: a read-only
// param may not be supplied by a user-initiated call, but may be supplied
// when the values came from discovery.
type Source int

const (
	SourceUser Source = iota
	SourceDiscovery
)

// Error is returned when validation fails; Code is MissingParameter,
// InvalidParameter or ParameterNotWritable, ParamTypeID identifies the
// offending param.
type Error struct {
	Code        status.Code
	ParamTypeID model.ID
	Reason      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: param %s: %s", e.Code, e.ParamTypeID, e.Reason)
}

// Validate checks params against paramTypes, filling in defaults for
// missing optional params and returning the completed value set. Extra keys
// in params that don't correspond to a known ParamType are dropped silently
// (unknown params are not the caller's concern).
func Validate(paramTypes []model.ParamType, params model.ParamValues, src Source) (model.ParamValues, *Error) {
	out := make(model.ParamValues, len(paramTypes))
	for _, pt := range paramTypes {
		v, present := params[pt.ID]
		if !present {
			if pt.DefaultValue == nil {
				return nil, &Error{Code: status.MissingParameter, ParamTypeID: pt.ID, Reason: "no value and no default"}
			}
			out[pt.ID] = pt.DefaultValue
			continue
		}
		if pt.ReadOnly && src == SourceUser {
			return nil, &Error{Code: status.ParameterNotWritable, ParamTypeID: pt.ID, Reason: "read-only parameter"}
		}
		converted, err := convert(pt.Type, v)
		if err != nil {
			return nil, &Error{Code: status.InvalidParameter, ParamTypeID: pt.ID, Reason: err.Error()}
		}
		if err := checkRange(pt, converted); err != nil {
			return nil, &Error{Code: status.InvalidParameter, ParamTypeID: pt.ID, Reason: err.Error()}
		}
		if err := checkAllowed(pt, converted); err != nil {
			return nil, &Error{Code: status.InvalidParameter, ParamTypeID: pt.ID, Reason: err.Error()}
		}
		out[pt.ID] = converted
	}
	return out, nil
}

// convert attempts a semantic-type conversion of v, returning an error that
// the caller maps to InvalidParameter on failure.
func convert(t model.SemanticType, v interface{}) (interface{}, error) {
	switch t {
	case model.TypeBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		}
		return nil, fmt.Errorf("expected bool, got %T", v)
	case model.TypeInt:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			if x == math.Trunc(x) {
				return int(x), nil
			}
		}
		return nil, fmt.Errorf("expected int, got %T", v)
	case model.TypeUint:
		switch x := v.(type) {
		case uint:
			return x, nil
		case int:
			if x >= 0 {
				return uint(x), nil
			}
		case float64:
			if x >= 0 && x == math.Trunc(x) {
				return uint(x), nil
			}
		}
		return nil, fmt.Errorf("expected uint, got %T", v)
	case model.TypeDouble:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		}
		return nil, fmt.Errorf("expected double, got %T", v)
	case model.TypeString, model.TypeUUID:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected string, got %T", v)
	case model.TypeVariant:
		return v, nil
	default:
		return nil, fmt.Errorf("unknown semantic type %q", t)
	}
}

// checkRange applies numeric range checks for int/uint/double, and natural
// variant ordering otherwise: strings compare lexically against string
// bounds; bools are not range-checked.
func checkRange(pt model.ParamType, v interface{}) error {
	if pt.MinValue == nil && pt.MaxValue == nil {
		return nil
	}
	if s, isString := v.(string); isString {
		if min, ok := pt.MinValue.(string); ok && s < min {
			return fmt.Errorf("value %q below minimum %q", s, min)
		}
		if max, ok := pt.MaxValue.(string); ok && s > max {
			return fmt.Errorf("value %q above maximum %q", s, max)
		}
		return nil
	}
	cmp, ok := compareValue(v)
	if !ok {
		return nil // incomparable types are not range-checked
	}
	if pt.MinValue != nil {
		if min, ok := compareValue(pt.MinValue); ok && cmp < min {
			return fmt.Errorf("value %v below minimum %v", v, pt.MinValue)
		}
	}
	if pt.MaxValue != nil {
		if max, ok := compareValue(pt.MaxValue); ok && cmp > max {
			return fmt.Errorf("value %v above maximum %v", v, pt.MaxValue)
		}
	}
	return nil
}

// compareValue reduces a value to a float64 ordering key for range checks.
// Strings and bools have no natural numeric ordering and return ok=false;
// checkRange handles strings before calling this.
func compareValue(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// checkAllowed enforces an exact-match allow-list when one is declared.
func checkAllowed(pt model.ParamType, v interface{}) error {
	if len(pt.AllowedValues) == 0 {
		return nil
	}
	for _, allowed := range pt.AllowedValues {
		if allowed == v {
			return nil
		}
	}
	return fmt.Errorf("value %v not in allowed values %v", v, pt.AllowedValues)
}
