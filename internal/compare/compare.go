// Package compare implements the structural result comparator.
package compare

import (
	"math"

	"practiceraptor/internal/protocol"
)

// floatTolerance is absolute, not relative: fixture values are small
// integers and floats, so a fixed epsilon is the right contract.
const floatTolerance = 1e-9

// Equivalent reports whether the actual value matches the expected value.
// Numbers compare with tolerance when either side is a float, sequences
// compare element-wise in order, mappings compare per key independent of
// order, everything else compares natively. The rules apply recursively, so
// a sequence of floats tolerates per-element error.
func Equivalent(actual, expected protocol.Value) bool {
	if actual.IsNumber() && expected.IsNumber() {
		if actual.Kind == protocol.KindInt && expected.Kind == protocol.KindInt {
			return actual.Int == expected.Int
		}
		return math.Abs(actual.AsFloat()-expected.AsFloat()) < floatTolerance
	}

	if actual.Kind != expected.Kind {
		return false
	}

	switch actual.Kind {
	case protocol.KindSequence:
		if len(actual.Seq) != len(expected.Seq) {
			return false
		}
		for i := range actual.Seq {
			if !Equivalent(actual.Seq[i], expected.Seq[i]) {
				return false
			}
		}
		return true
	case protocol.KindMapping:
		if len(actual.Map) != len(expected.Map) {
			return false
		}
		for k, av := range actual.Map {
			ev, ok := expected.Map[k]
			if !ok {
				return false
			}
			if !Equivalent(av, ev) {
				return false
			}
		}
		return true
	case protocol.KindNull, "":
		return true
	case protocol.KindBool:
		return actual.Bool == expected.Bool
	case protocol.KindString:
		return actual.Str == expected.Str
	default:
		return false
	}
}
