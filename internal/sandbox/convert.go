package sandbox

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"practiceraptor/internal/protocol"
	appErr "practiceraptor/pkg/errors"
)

// ToLua converts a protocol value into its interpreter representation.
// The interpreter has a single number type, so the int/float distinction
// collapses on the way in; FromLua restores it for integral results.
// A null inside a sequence or mapping has no table representation (setting
// nil removes the slot) and is rejected rather than silently dropped.
func ToLua(L *lua.LState, v protocol.Value) (lua.LValue, error) {
	switch v.Kind {
	case protocol.KindBool:
		return lua.LBool(v.Bool), nil
	case protocol.KindInt:
		return lua.LNumber(v.Int), nil
	case protocol.KindFloat:
		return lua.LNumber(v.Float), nil
	case protocol.KindString:
		return lua.LString(v.Str), nil
	case protocol.KindSequence:
		tbl := L.NewTable()
		for i, item := range v.Seq {
			if item.Kind == protocol.KindNull {
				return nil, appErr.Newf(appErr.InvalidValue, "null at sequence index %d cannot be represented", i)
			}
			lv, err := ToLua(L, item)
			if err != nil {
				return nil, err
			}
			tbl.Append(lv)
		}
		return tbl, nil
	case protocol.KindMapping:
		tbl := L.NewTable()
		for k, item := range v.Map {
			if item.Kind == protocol.KindNull {
				return nil, appErr.Newf(appErr.InvalidValue, "null value for key %q cannot be represented", k)
			}
			lv, err := ToLua(L, item)
			if err != nil {
				return nil, err
			}
			tbl.RawSetString(k, lv)
		}
		return tbl, nil
	default:
		return lua.LNil, nil
	}
}

// FromLua converts an interpreter value back into a protocol value.
// Tables with consecutive integer keys 1..n become sequences; tables with
// string keys become mappings; an empty table becomes an empty sequence.
// Functions, userdata and cyclic tables cannot cross the process boundary
// and are rejected.
func FromLua(lv lua.LValue) (protocol.Value, error) {
	return fromLua(lv, map[*lua.LTable]bool{})
}

func fromLua(lv lua.LValue, seen map[*lua.LTable]bool) (protocol.Value, error) {
	switch x := lv.(type) {
	case *lua.LNilType:
		return protocol.Null(), nil
	case lua.LBool:
		return protocol.BoolValue(bool(x)), nil
	case lua.LNumber:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			// Inf and NaN have no JSON encoding and would abort the
			// outcome report.
			return protocol.Value{}, appErr.Newf(appErr.InvalidValue, "non-finite number cannot be returned: %v", f)
		}
		if f == math.Trunc(f) && math.Abs(f) < float64(math.MaxInt64) {
			return protocol.IntValue(int64(f)), nil
		}
		return protocol.FloatValue(f), nil
	case lua.LString:
		return protocol.StringValue(string(x)), nil
	case *lua.LTable:
		if seen[x] {
			return protocol.Value{}, appErr.New(appErr.InvalidValue).WithMessage("cyclic table cannot be returned")
		}
		seen[x] = true
		defer delete(seen, x)
		return tableToValue(x, seen)
	default:
		return protocol.Value{}, appErr.Newf(appErr.InvalidValue, "unsupported return type: %s", lv.Type().String())
	}
}

func tableToValue(tbl *lua.LTable, seen map[*lua.LTable]bool) (protocol.Value, error) {
	arrayLen := tbl.Len()
	total := 0
	var convErr error

	stringKeys := make(map[string]lua.LValue)
	onlyArrayKeys := true
	tbl.ForEach(func(k, v lua.LValue) {
		total++
		switch key := k.(type) {
		case lua.LNumber:
			f := float64(key)
			if f != math.Trunc(f) || int(f) < 1 || int(f) > arrayLen {
				onlyArrayKeys = false
			}
		case lua.LString:
			onlyArrayKeys = false
			stringKeys[string(key)] = v
		default:
			onlyArrayKeys = false
			if convErr == nil {
				convErr = appErr.Newf(appErr.InvalidValue, "unsupported mapping key type: %s", k.Type().String())
			}
		}
	})
	if convErr != nil {
		return protocol.Value{}, convErr
	}

	if onlyArrayKeys && total == arrayLen {
		items := make([]protocol.Value, 0, arrayLen)
		for i := 1; i <= arrayLen; i++ {
			item, err := fromLua(tbl.RawGetInt(i), seen)
			if err != nil {
				return protocol.Value{}, err
			}
			items = append(items, item)
		}
		return protocol.SequenceValue(items...), nil
	}

	if len(stringKeys) != total {
		return protocol.Value{}, appErr.New(appErr.InvalidValue).WithMessage("mixed table keys cannot be returned")
	}
	m := make(map[string]protocol.Value, len(stringKeys))
	for k, v := range stringKeys {
		item, err := fromLua(v, seen)
		if err != nil {
			return protocol.Value{}, err
		}
		m[k] = item
	}
	return protocol.MappingValue(m), nil
}
