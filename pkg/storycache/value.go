// Package storycache serializes a loaded Story and a Bookmark to a
// length-prefixed MessagePack blob and reloads them losslessly,
// mirroring the original engine's `rmp_serde`-backed binary cache.
package storycache

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/value"
)

// valueToWire converts a Value to the bare payload MessagePack stores
// it as (no kind tag, matching the original's `#[serde(untagged)]`
// Value enum): a string, a float64, a bool, or nil.
func valueToWire(v value.Value) any {
	switch v.Kind() {
	case value.KindString:
		return v.AsString()
	case value.KindNumber:
		return v.AsNumber()
	case value.KindBool:
		return v.AsBool()
	default:
		return nil
	}
}

// wireToValue recovers a Value's kind from the Go type MessagePack
// decoded its payload into.
func wireToValue(raw any) (value.Value, error) {
	switch x := raw.(type) {
	case nil:
		return value.Value{}, nil
	case string:
		return value.String(x), nil
	case bool:
		return value.Bool(x), nil
	case float32:
		return value.Number(float64(x)), nil
	case float64:
		return value.Number(x), nil
	case int8:
		return value.Number(float64(x)), nil
	case int16:
		return value.Number(float64(x)), nil
	case int32:
		return value.Number(float64(x)), nil
	case int64:
		return value.Number(float64(x)), nil
	case uint8:
		return value.Number(float64(x)), nil
	case uint16:
		return value.Number(float64(x)), nil
	case uint32:
		return value.Number(float64(x)), nil
	case uint64:
		return value.Number(float64(x)), nil
	default:
		return value.Value{}, fmt.Errorf("storycache: unexpected value payload type %T", x)
	}
}

func stateToWire(s map[string]value.Value) map[string]any {
	if s == nil {
		return nil
	}
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = valueToWire(v)
	}
	return out
}

func wireToState(m map[string]any) (map[string]value.Value, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]value.Value, len(m))
	for k, raw := range m {
		v, err := wireToValue(raw)
		if err != nil {
			return nil, fmt.Errorf("state %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
