// Package vm is a reference evaluator for lowered enum code. It models the
// target runtime closely enough to execute every lowering rule, so rule
// changes can be checked against observable program behaviour.
package vm

import (
	"fmt"
	"strconv"

	"lowerc/internal/types"
)

// ValueKind identifies the runtime shape of a Value.
type ValueKind uint8

const (
	VKNull ValueKind = iota
	VKString
	VKNumber
	VKBoolean
	// VKObject is a plain object, including boxed numerics such as Integer.
	VKObject
	// VKEnum is a boxed enum instance.
	VKEnum
)

func (k ValueKind) String() string {
	switch k {
	case VKNull:
		return "null"
	case VKString:
		return "string"
	case VKNumber:
		return "number"
	case VKBoolean:
		return "boolean"
	case VKObject:
		return "object"
	case VKEnum:
		return "enum"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is a target runtime value. Native enum constants are foreign
// values that remember their enum and mapping; boxed enum constants are
// VKEnum instances with an identity.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool

	Class   string       // VKObject
	Enum    types.TypeID // VKEnum, or a foreign value produced by a native enum
	Mapping string       // foreign value produced by a native enum
	Ordinal int          // VKEnum
	Under   ValueKind    // VKEnum: kind of the custom value, VKNull when ordinal-backed

	ref uint64
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{Kind: VKString, Str: s} }
func Number(n float64) Value { return Value{Kind: VKNumber, Num: n} }
func Boolean(b bool) Value { return Value{Kind: VKBoolean, Bool: b} }
func (v Value) IsNull() bool { return v.Kind == VKNull }
func (v Value) IsForeign() bool { return v.Kind == VKString || v.Kind == VKNumber || v.Kind == VKBoolean }
func (v Value) IsEnum() bool { return v.Kind == VKEnum || (v.IsForeign() && v.Enum.IsValid()) }
func (v Value) IsBoxedEnum() bool { return v.Kind == VKEnum }

// underlying returns the custom value of a boxed enum as a plain foreign value.
func (v Value) underlying() Value {
	return Value{Kind: v.Under, Str: v.Str, Num: v.Num, Bool: v.Bool}
}

// plain drops native enum provenance, leaving the foreign value as foreign
// code sees it.
func (v Value) plain() Value {
	return Value{Kind: v.Kind, Str: v.Str, Num: v.Num, Bool: v.Bool}
}

func (v Value) String() string {
	switch v.Kind {
	case VKNull:
		return "null"
	case VKString:
		return v.Str
	case VKNumber:
		return formatNumber(v.Num)
	case VKBoolean:
		return strconv.FormatBool(v.Bool)
	case VKObject:
		if v.Class == ClassInteger {
			return formatNumber(v.Num)
		}
		return fmt.Sprintf("%s@%d", v.Class, v.ref)
	case VKEnum:
		return fmt.Sprintf("enum#%d.%d", v.Enum, v.Ordinal)
	default:
		return "<invalid>"
	}
}

// formatNumber renders numbers the way the target runtime does: 1, not 1.0.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// sameForeign compares two foreign values by kind and value only.
func sameForeign(a, b Value) bool {
	if !a.IsForeign() || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case VKString:
		return a.Str == b.Str
	case VKNumber:
		return a.Num == b.Num
	default:
		return a.Bool == b.Bool
	}
}
