// Package protocol defines the messages that cross the supervisor/worker
// process boundary and the tagged value representation they carry.
package protocol

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	appErr "practiceraptor/pkg/errors"
)

// Kind discriminates the variants of a Value.
type Kind string

const (
	KindNull     Kind = "null"
	KindBool     Kind = "bool"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindString   Kind = "string"
	KindSequence Kind = "sequence"
	KindMapping  Kind = "mapping"
)

// Value is a dynamically-typed value as seen by the execution engine.
// It is a tagged union: exactly the field selected by Kind is meaningful.
// Values serialize through JSON with an explicit type tag so that the
// int/float distinction survives the process boundary.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Seq   []Value
	Map   map[string]Value
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// BoolValue wraps a bool.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// IntValue wraps an integer.
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// FloatValue wraps a float.
func FloatValue(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

// StringValue wraps a string.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// SequenceValue wraps an ordered sequence.
func SequenceValue(items ...Value) Value {
	return Value{Kind: KindSequence, Seq: items}
}

// MappingValue wraps a string-keyed mapping.
func MappingValue(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{Kind: KindMapping, Map: m}
}

// IsNumber reports whether the value is an int or a float.
func (v Value) IsNumber() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// AsFloat returns the numeric value widened to float64.
// Only meaningful when IsNumber is true.
func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// Clone returns a deep copy. Nested sequences and mappings are fully
// duplicated so the worker and the caller never share memory.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindSequence:
		items := make([]Value, len(v.Seq))
		for i, item := range v.Seq {
			items[i] = item.Clone()
		}
		return Value{Kind: KindSequence, Seq: items}
	case KindMapping:
		m := make(map[string]Value, len(v.Map))
		for k, item := range v.Map {
			m[k] = item.Clone()
		}
		return Value{Kind: KindMapping, Map: m}
	default:
		return v
	}
}

// CloneInput deep-copies a test input mapping.
func CloneInput(input map[string]Value) map[string]Value {
	out := make(map[string]Value, len(input))
	for k, v := range input {
		out[k] = v.Clone()
	}
	return out
}

// String renders the value for error messages. Mapping keys are sorted so
// renderings are deterministic.
func (v Value) String() string {
	switch v.Kind {
	case KindNull, "":
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.Str)
	case KindSequence:
		parts := make([]string, len(v.Seq))
		for i, item := range v.Seq {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.Map[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<invalid>"
	}
}

// valueEnvelope is the wire form of a Value.
type valueEnvelope struct {
	T Kind            `json:"t"`
	V json.RawMessage `json:"v,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	env := valueEnvelope{T: v.Kind}
	var payload interface{}
	switch v.Kind {
	case KindNull, "":
		// The zero Value serializes as null.
		env.T = KindNull
		payload = nil
	case KindBool:
		payload = v.Bool
	case KindInt:
		payload = v.Int
	case KindFloat:
		payload = v.Float
	case KindString:
		payload = v.Str
	case KindSequence:
		if v.Seq == nil {
			payload = []Value{}
		} else {
			payload = v.Seq
		}
	case KindMapping:
		if v.Map == nil {
			payload = map[string]Value{}
		} else {
			payload = v.Map
		}
	default:
		return nil, appErr.Newf(appErr.ProtocolError, "unknown value kind: %q", v.Kind)
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.V = raw
	}
	return json.Marshal(env)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var env valueEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch env.T {
	case KindNull:
		*v = Null()
	case KindBool:
		var b bool
		if err := json.Unmarshal(env.V, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case KindInt:
		var i int64
		if err := json.Unmarshal(env.V, &i); err != nil {
			return err
		}
		*v = IntValue(i)
	case KindFloat:
		var f float64
		if err := json.Unmarshal(env.V, &f); err != nil {
			return err
		}
		*v = FloatValue(f)
	case KindString:
		var s string
		if err := json.Unmarshal(env.V, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case KindSequence:
		var items []Value
		if err := json.Unmarshal(env.V, &items); err != nil {
			return err
		}
		*v = Value{Kind: KindSequence, Seq: items}
	case KindMapping:
		var m map[string]Value
		if err := json.Unmarshal(env.V, &m); err != nil {
			return err
		}
		*v = MappingValue(m)
	default:
		return appErr.Newf(appErr.ProtocolError, "unknown value kind: %q", env.T)
	}
	return nil
}

// FromGo converts plain decoded Go data (as produced by yaml/json decoding
// into interface{}) into a Value. Mapping keys must be strings.
func FromGo(data interface{}) (Value, error) {
	switch x := data.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case float64:
		return FloatValue(x), nil
	case string:
		return StringValue(x), nil
	case []interface{}:
		items := make([]Value, len(x))
		for i, item := range x {
			val, err := FromGo(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = val
		}
		return Value{Kind: KindSequence, Seq: items}, nil
	case map[string]interface{}:
		m := make(map[string]Value, len(x))
		for k, item := range x {
			val, err := FromGo(item)
			if err != nil {
				return Value{}, err
			}
			m[k] = val
		}
		return MappingValue(m), nil
	case map[interface{}]interface{}:
		m := make(map[string]Value, len(x))
		for k, item := range x {
			key, ok := k.(string)
			if !ok {
				return Value{}, appErr.Newf(appErr.InvalidFormat, "mapping key must be a string, got %T", k)
			}
			val, err := FromGo(item)
			if err != nil {
				return Value{}, err
			}
			m[key] = val
		}
		return MappingValue(m), nil
	default:
		return Value{}, appErr.Newf(appErr.InvalidFormat, "unsupported value type: %s", fmt.Sprintf("%T", data))
	}
}
