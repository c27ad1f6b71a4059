package sandbox_test

import (
	"math"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"practiceraptor/internal/protocol"
	"practiceraptor/internal/sandbox"
	appErr "practiceraptor/pkg/errors"
)

func TestToLuaFromLuaRoundTrip(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	tests := []struct {
		name  string
		value protocol.Value
	}{
		{"null", protocol.Null()},
		{"bool", protocol.BoolValue(true)},
		{"int", protocol.IntValue(-42)},
		{"float", protocol.FloatValue(2.5)},
		{"string", protocol.StringValue("solution")},
		{"sequence", protocol.SequenceValue(protocol.IntValue(1), protocol.StringValue("a"))},
		{"mapping", protocol.MappingValue(map[string]protocol.Value{
			"k": protocol.SequenceValue(protocol.BoolValue(false)),
		})},
		{"empty sequence", protocol.SequenceValue()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lv, err := sandbox.ToLua(L, tt.value)
			if err != nil {
				t.Fatalf("ToLua() error = %v", err)
			}
			got, err := sandbox.FromLua(lv)
			if err != nil {
				t.Fatalf("FromLua() error = %v", err)
			}
			if got.String() != tt.value.String() {
				t.Errorf("round trip = %s, want %s", got, tt.value)
			}
		})
	}
}

func TestToLuaRejectsNullInContainers(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	tests := []struct {
		name  string
		value protocol.Value
	}{
		{"null in sequence", protocol.SequenceValue(
			protocol.IntValue(1), protocol.Null(), protocol.IntValue(2),
		)},
		{"null in mapping", protocol.MappingValue(map[string]protocol.Value{
			"k": protocol.Null(),
		})},
		{"null in nested sequence", protocol.SequenceValue(
			protocol.SequenceValue(protocol.Null()),
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sandbox.ToLua(L, tt.value); appErr.GetCode(err) != appErr.InvalidValue {
				t.Errorf("ToLua() code = %d, want InvalidValue", appErr.GetCode(err))
			}
		})
	}
}

func TestFromLuaRejectsNonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value lua.LNumber
	}{
		{"positive infinity", lua.LNumber(math.Inf(1))},
		{"negative infinity", lua.LNumber(math.Inf(-1))},
		{"nan", lua.LNumber(math.NaN())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sandbox.FromLua(tt.value); appErr.GetCode(err) != appErr.InvalidValue {
				t.Errorf("FromLua(%v) code = %d, want InvalidValue", tt.value, appErr.GetCode(err))
			}
		})
	}
}

func TestFromLuaRestoresIntegers(t *testing.T) {
	got, err := sandbox.FromLua(lua.LNumber(6))
	if err != nil {
		t.Fatalf("FromLua() error = %v", err)
	}
	if got.Kind != protocol.KindInt || got.Int != 6 {
		t.Errorf("FromLua(6) = %s (%s), want int 6", got, got.Kind)
	}

	got, err = sandbox.FromLua(lua.LNumber(6.5))
	if err != nil {
		t.Fatalf("FromLua() error = %v", err)
	}
	if got.Kind != protocol.KindFloat {
		t.Errorf("FromLua(6.5) kind = %s, want float", got.Kind)
	}
}

func TestFromLuaEmptyTableIsSequence(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	got, err := sandbox.FromLua(L.NewTable())
	if err != nil {
		t.Fatalf("FromLua() error = %v", err)
	}
	if got.Kind != protocol.KindSequence || len(got.Seq) != 0 {
		t.Errorf("FromLua(empty table) = %s (%s), want empty sequence", got, got.Kind)
	}
}

func TestFromLuaRejectsCyclicTable(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	tbl := L.NewTable()
	tbl.RawSetString("self", tbl)

	_, err := sandbox.FromLua(tbl)
	if appErr.GetCode(err) != appErr.InvalidValue {
		t.Errorf("FromLua(cyclic) code = %d, want InvalidValue", appErr.GetCode(err))
	}
}

func TestFromLuaRejectsUnsupportedValues(t *testing.T) {
	L := sandbox.NewState()
	defer L.Close()

	mixed := L.NewTable()
	mixed.Append(lua.LNumber(1))
	mixed.RawSetString("k", lua.LNumber(2))

	badKey := L.NewTable()
	badKey.RawSet(lua.LBool(true), lua.LNumber(1))

	tests := []struct {
		name  string
		value lua.LValue
	}{
		{"function", L.NewFunction(func(*lua.LState) int { return 0 })},
		{"mixed keys", mixed},
		{"non-string key", badKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sandbox.FromLua(tt.value); appErr.GetCode(err) != appErr.InvalidValue {
				t.Errorf("FromLua() code = %d, want InvalidValue", appErr.GetCode(err))
			}
		})
	}
}
