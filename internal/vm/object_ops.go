package vm

import (
	"cmp"
	"strings"

	"lowerc/internal/lowering"
	"lowerc/internal/types"
)

// enumOf returns the enum that produced v, if any.
func (rt *Runtime) enumOf(v Value) (*enumType, bool) {
	if !v.IsEnum() {
		return nil, false
	}
	et, err := rt.lookup(v.Enum)
	return et, err == nil
}

// InstanceOfClass is v instanceof class for the builtin classes.
func (rt *Runtime) InstanceOfClass(v Value, class string) bool {
	if v.IsNull() {
		return false
	}
	if class == ClassObject {
		return true
	}
	if et, ok := rt.enumOf(v); ok {
		variant := et.def.Info.Variant
		var op lowering.Operation
		switch class {
		case ClassEnum:
			op = lowering.OpInstanceOfEnum
		case ClassComparable:
			op = lowering.OpInstanceOfComparable
		case ClassSerializable:
			op = lowering.OpInstanceOfSerializable
		case ClassString, ClassDouble, ClassNumber, ClassBoolean:
			if lowering.Lookup(variant, lowering.OpInstanceOfForeignKind).Strategy != lowering.StrategyConstTrue {
				return false
			}
			return foreignInstanceOf(v.Kind, class)
		default:
			return false
		}
		return lowering.Lookup(variant, op).Strategy == lowering.StrategyConstTrue
	}

	switch v.Kind {
	case VKString, VKNumber, VKBoolean:
		if class == ClassComparable || class == ClassSerializable {
			return true
		}
		return foreignInstanceOf(v.Kind, class)
	case VKObject:
		if v.Class == class {
			return true
		}
		if v.Class == ClassInteger {
			return class == ClassNumber || class == ClassComparable || class == ClassSerializable
		}
	}
	return false
}

func foreignInstanceOf(k ValueKind, class string) bool {
	switch k {
	case VKString:
		return class == ClassString
	case VKNumber:
		return class == ClassDouble || class == ClassNumber
	case VKBoolean:
		return class == ClassBoolean
	}
	return false
}

// CastToClass is (class) v for the builtin classes.
func (rt *Runtime) CastToClass(v Value, class string) (Value, error) {
	if v.IsNull() {
		return v, nil
	}
	if et, ok := rt.enumOf(v); ok {
		var op lowering.Operation
		switch class {
		case ClassEnum:
			op = lowering.OpCastToEnum
		case ClassComparable:
			op = lowering.OpCastToComparable
		}
		if op != lowering.OpInvalid {
			r := lowering.Lookup(et.def.Info.Variant, op)
			if r.Strategy == lowering.StrategyAlwaysFail {
				return Value{}, fault(r.Fault, op, "%s cannot be cast to %s", et.def.Name, class)
			}
			return v, nil
		}
	}
	if !rt.InstanceOfClass(v, class) {
		return Value{}, fault(lowering.FaultInvalidCast, lowering.OpCast, "%s cannot be cast to %s", describe(v), class)
	}
	return v, nil
}

// EqualsObject is recv.equals(other) with recv typed as Object.
func (rt *Runtime) EqualsObject(recv, other Value) (bool, error) {
	if recv.IsEnum() {
		return rt.Equals(recv.Enum, recv, other)
	}
	if recv.IsNull() {
		return false, fault(lowering.FaultNullEnumDereference, lowering.OpEquals, "null receiver")
	}
	if recv.IsForeign() {
		return sameForeign(recv, other), nil
	}
	if recv.Class == ClassInteger {
		return other.Kind == VKObject && other.Class == ClassInteger && other.Num == recv.Num, nil
	}
	return Same(recv, other), nil
}

// HashObject is recv.hashCode() with recv typed as Object.
func (rt *Runtime) HashObject(recv Value) (int32, error) {
	if recv.IsEnum() {
		return rt.HashCode(recv.Enum, recv)
	}
	if recv.IsNull() {
		return 0, fault(lowering.FaultNullEnumDereference, lowering.OpHashCode, "null receiver")
	}
	return foreignHash(recv), nil
}

// ToStringObject is recv.toString() with recv typed as Object.
func (rt *Runtime) ToStringObject(recv Value) (string, error) {
	if recv.IsEnum() {
		return rt.ToString(recv.Enum, recv)
	}
	if recv.IsNull() {
		return "", fault(lowering.FaultNullEnumDereference, lowering.OpToString, "null receiver")
	}
	return recv.String(), nil
}

// CompareTo is ((Comparable) a).compareTo(b): the receiver's dynamic type
// decides which contract applies.
func (rt *Runtime) CompareTo(a, b Value) (int, error) {
	if a.IsNull() || b.IsNull() {
		return 0, fault(lowering.FaultNullEnumDereference, lowering.OpCompareTo, "null operand")
	}
	if et, ok := rt.enumOf(a); ok {
		r := lowering.Lookup(et.def.Info.Variant, lowering.OpCompareTo)
		switch r.Strategy {
		case lowering.StrategyOrdinal:
			if b.Kind == VKEnum && b.Enum == a.Enum {
				return cmp.Compare(a.Ordinal, b.Ordinal), nil
			}
		case lowering.StrategyForeignValue:
			if b.IsForeign() && b.Enum.IsValid() && b.Mapping == a.Mapping && b.Kind == a.Kind {
				return compareForeign(a, b), nil
			}
		case lowering.StrategyAlwaysFail:
		default:
			return 0, unexpected(r)
		}
		return 0, fault(r.Fault, lowering.OpCompareTo, "%s is not comparable to %s", et.def.Name, describe(b))
	}

	switch {
	case a.IsForeign():
		if b.IsForeign() && !b.IsEnum() && a.Kind == b.Kind {
			return compareForeign(a, b), nil
		}
	case a.Kind == VKObject && a.Class == ClassInteger:
		if b.Kind == VKObject && b.Class == ClassInteger {
			return cmp.Compare(a.Num, b.Num), nil
		}
	}
	return 0, fault(lowering.FaultInvalidComparison, lowering.OpCompareTo, "%s is not comparable to %s", describe(a), describe(b))
}

func compareForeign(a, b Value) int {
	switch a.Kind {
	case VKString:
		return strings.Compare(a.Str, b.Str)
	case VKNumber:
		return cmp.Compare(a.Num, b.Num)
	default:
		switch {
		case a.Bool == b.Bool:
			return 0
		case b.Bool:
			return -1
		default:
			return 1
		}
	}
}

// EnumName returns the qualified name of a defined enum.
func (rt *Runtime) EnumName(id types.TypeID) string {
	if et, err := rt.lookup(id); err == nil {
		return et.def.Name
	}
	return ""
}
