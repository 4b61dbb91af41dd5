package types

import "fmt"

// Representation is the runtime shape an enum lowers to.
type Representation uint8

const (
	RepInvalid Representation = iota
	// RepNativeValueless maps onto a foreign symbolic value; name and ordinal only.
	RepNativeValueless
	// RepNativeCustomValue maps onto a foreign string, number or boolean.
	RepNativeCustomValue
	// RepBoxedOrdinal boxes the ordinal number.
	RepBoxedOrdinal
	// RepBoxedCustomValue boxes an explicit underlying value.
	RepBoxedCustomValue
)

func (r Representation) String() string {
	switch r {
	case RepNativeValueless:
		return "NativeValueless"
	case RepNativeCustomValue:
		return "NativeCustomValue"
	case RepBoxedOrdinal:
		return "BoxedOrdinal"
	case RepBoxedCustomValue:
		return "BoxedCustomValue"
	default:
		return "Invalid"
	}
}

// ValueKind is the kind of a custom underlying value.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueString
	ValueNumber
	ValueBoolean
)

func (k ValueKind) String() string {
	switch k {
	case ValueNone:
		return "None"
	case ValueString:
		return "String"
	case ValueNumber:
		return "Number"
	case ValueBoolean:
		return "Boolean"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// EnumVariant is the closed set of enum representations: the two valueless
// shapes plus the two custom-value shapes crossed with three value kinds.
type EnumVariant struct {
	Rep  Representation
	Kind ValueKind
}

var (
	NativeValueless = EnumVariant{Rep: RepNativeValueless}
	BoxedOrdinal    = EnumVariant{Rep: RepBoxedOrdinal}
)

// NativeCustomValue builds the native custom-value variant of kind k.
func NativeCustomValue(k ValueKind) EnumVariant {
	return EnumVariant{Rep: RepNativeCustomValue, Kind: k}
}

// BoxedCustomValue builds the boxed custom-value variant of kind k.
func BoxedCustomValue(k ValueKind) EnumVariant {
	return EnumVariant{Rep: RepBoxedCustomValue, Kind: k}
}

// AllEnumVariants lists every valid variant in a stable order.
func AllEnumVariants() []EnumVariant {
	return []EnumVariant{
		NativeValueless,
		NativeCustomValue(ValueString),
		NativeCustomValue(ValueNumber),
		NativeCustomValue(ValueBoolean),
		BoxedOrdinal,
		BoxedCustomValue(ValueString),
		BoxedCustomValue(ValueNumber),
		BoxedCustomValue(ValueBoolean),
	}
}

// Valid reports whether v is one of AllEnumVariants.
func (v EnumVariant) Valid() bool {
	switch v.Rep {
	case RepNativeValueless, RepBoxedOrdinal:
		return v.Kind == ValueNone
	case RepNativeCustomValue, RepBoxedCustomValue:
		return v.Kind == ValueString || v.Kind == ValueNumber || v.Kind == ValueBoolean
	default:
		return false
	}
}

// IsNative reports whether values are foreign, unboxed values.
func (v EnumVariant) IsNative() bool {
	return v.Rep == RepNativeValueless || v.Rep == RepNativeCustomValue
}

// HasCustomValue reports whether the variant carries an explicit value.
func (v EnumVariant) HasCustomValue() bool {
	return v.Rep == RepNativeCustomValue || v.Rep == RepBoxedCustomValue
}

// ForeignKind is the kind of the value seen by foreign code. Valueless
// native enums surface as their string names; boxed ordinals as numbers.
func (v EnumVariant) ForeignKind() ValueKind {
	switch v.Rep {
	case RepNativeValueless:
		return ValueString
	case RepBoxedOrdinal:
		return ValueNumber
	default:
		return v.Kind
	}
}

func (v EnumVariant) String() string {
	if v.HasCustomValue() {
		return fmt.Sprintf("%s(%s)", v.Rep, v.Kind)
	}
	return v.Rep.String()
}

// EnumInfo is the classification attached to an enum descriptor.
type EnumInfo struct {
	Variant   EnumVariant
	Namespace string // foreign mapping namespace.name; native enums only
	Constants []string
	Member    string // custom value member, empty when valueless
}

// TagEnum attaches info to the enum descriptor id. The tag is fixed: tagging
// again with a different variant is malformed.
func (in *Interner) TagEnum(id TypeID, info EnumInfo) error {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindEnum {
		return malformed(t.Name, "enum tag on non-enum type %d", id)
	}
	if !info.Variant.Valid() {
		return malformed(t.Name, "invalid enum variant %s", info.Variant)
	}
	info.Constants = append([]string(nil), info.Constants...)

	in.mu.Lock()
	defer in.mu.Unlock()
	if prev, ok := in.enums[id]; ok {
		if prev.Variant != info.Variant || prev.Namespace != info.Namespace {
			return malformed(t.Name, "enum tagged %s, retagged %s", prev.Variant, info.Variant)
		}
		return nil
	}
	in.enums[id] = info
	return nil
}

// EnumInfo returns the classification of the enum id.
func (in *Interner) EnumInfo(id TypeID) (EnumInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info, ok := in.enums[id]
	if !ok {
		return EnumInfo{}, false
	}
	info.Constants = append([]string(nil), info.Constants...)
	return info, true
}
