package lowering

import (
	"fmt"

	"lowerc/internal/types"
)

// Strategy is how the generated code realises an operation.
type Strategy uint8

const (
	StrategyInvalid Strategy = iota
	// StrategyForeignValue operates on the foreign value itself.
	StrategyForeignValue
	// StrategyUnderlyingValue unwraps the boxed custom value first.
	StrategyUnderlyingValue
	// StrategyOrdinal operates on the ordinal number.
	StrategyOrdinal
	// StrategyReference compares boxed instances by reference.
	StrategyReference
	// StrategyInstanceHash hashes the boxed instance.
	StrategyInstanceHash
	// StrategyMappingCheck checks the foreign value belongs to the enum's
	// mapping namespace.
	StrategyMappingCheck
	// StrategyKindCheck checks the foreign kind of the value only.
	StrategyKindCheck
	// StrategyExactType checks for the exact boxed wrapper type.
	StrategyExactType
	// StrategyUnchecked emits no runtime check.
	StrategyUnchecked
	StrategyConstTrue
	StrategyConstFalse
	// StrategyAlwaysFail raises the rule's Fault.
	StrategyAlwaysFail
	// StrategyConstant is resolved at compile time.
	StrategyConstant
	// StrategyPreserve leaves the representation untouched.
	StrategyPreserve
	// StrategyDevirtualized calls the static form through the declared type.
	StrategyDevirtualized
)

var strategyNames = [...]string{
	StrategyInvalid:         "invalid",
	StrategyForeignValue:    "foreign-value",
	StrategyUnderlyingValue: "underlying-value",
	StrategyOrdinal:         "ordinal",
	StrategyReference:       "reference",
	StrategyInstanceHash:    "instance-hash",
	StrategyMappingCheck:    "mapping-check",
	StrategyKindCheck:       "kind-check",
	StrategyExactType:       "exact-type",
	StrategyUnchecked:       "unchecked",
	StrategyConstTrue:       "const-true",
	StrategyConstFalse:      "const-false",
	StrategyAlwaysFail:      "always-fail",
	StrategyConstant:        "constant",
	StrategyPreserve:        "preserve",
	StrategyDevirtualized:   "devirtualized",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// Rule tells the code generator how to emit Op for Variant.
type Rule struct {
	Variant  types.EnumVariant
	Op       Operation
	Strategy Strategy
	// Fault is raised when the runtime check of Strategy fails.
	Fault Fault
	// NullFault is raised when the enum operand is null.
	NullFault Fault
	// Clinit reports whether the operation runs the static initializer
	// first.
	Clinit bool
}

func (r Rule) String() string {
	s := fmt.Sprintf("%s %s: %s", r.Variant, r.Op, r.Strategy)
	if r.Fault != FaultNone {
		s += " fault=" + r.Fault.String()
	}
	if r.NullFault != FaultNone {
		s += " null=" + r.NullFault.String()
	}
	if r.Clinit {
		s += " clinit"
	}
	return s
}

const repCount = int(types.RepBoxedCustomValue) + 1

// row holds one rule per representation, indexed by types.Representation.
type row [repCount]Rule

func same(r Rule) row {
	return each(r, r, r, r)
}

func split(native, boxed Rule) row {
	return each(native, native, boxed, boxed)
}

func each(nativeValueless, nativeCustom, boxedOrdinal, boxedCustom Rule) row {
	var out row
	out[types.RepNativeValueless] = nativeValueless
	out[types.RepNativeCustomValue] = nativeCustom
	out[types.RepBoxedOrdinal] = boxedOrdinal
	out[types.RepBoxedCustomValue] = boxedCustom
	return out
}

const (
	nullDeref = FaultNullEnumDereference
	badCast   = FaultInvalidCast
	badCmp    = FaultInvalidComparison
)

var ruleTable = [opCount]row{
	OpSwitch: each(
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyOrdinal, NullFault: nullDeref},
		Rule{Strategy: StrategyUnderlyingValue, NullFault: nullDeref},
	),
	OpIdentity: split(
		Rule{Strategy: StrategyForeignValue},
		Rule{Strategy: StrategyReference},
	),
	OpEquals: split(
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyReference, NullFault: nullDeref},
	),
	OpHashCode: split(
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyInstanceHash, NullFault: nullDeref},
	),
	OpToString: each(
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyOrdinal, NullFault: nullDeref},
		Rule{Strategy: StrategyUnderlyingValue, NullFault: nullDeref},
	),
	OpInstanceOf: split(
		Rule{Strategy: StrategyMappingCheck},
		Rule{Strategy: StrategyExactType},
	),
	OpCast: each(
		Rule{Strategy: StrategyUnchecked},
		Rule{Strategy: StrategyKindCheck, Fault: badCast},
		Rule{Strategy: StrategyExactType, Fault: badCast},
		Rule{Strategy: StrategyExactType, Fault: badCast},
	),
	OpConstantRead: same(Rule{Strategy: StrategyConstant}),
	OpOrdinal:      same(Rule{Strategy: StrategyOrdinal, NullFault: nullDeref}),
	OpValueRead: each(
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyOrdinal, NullFault: nullDeref},
		Rule{Strategy: StrategyUnderlyingValue, NullFault: nullDeref},
	),
	OpDevirtualizedCall: same(Rule{Strategy: StrategyDevirtualized, NullFault: nullDeref, Clinit: true}),
	OpCompareTo: each(
		Rule{Strategy: StrategyForeignValue, Fault: badCmp, NullFault: nullDeref},
		Rule{Strategy: StrategyForeignValue, Fault: badCmp, NullFault: nullDeref},
		Rule{Strategy: StrategyOrdinal, Fault: badCmp, NullFault: nullDeref},
		Rule{Strategy: StrategyAlwaysFail, Fault: badCmp, NullFault: nullDeref},
	),
	OpInstanceOfEnum: same(Rule{Strategy: StrategyConstFalse}),
	OpCastToEnum:     same(Rule{Strategy: StrategyAlwaysFail, Fault: badCast}),
	OpInstanceOfComparable: each(
		Rule{Strategy: StrategyConstTrue},
		Rule{Strategy: StrategyConstTrue},
		Rule{Strategy: StrategyConstTrue},
		Rule{Strategy: StrategyConstFalse},
	),
	OpCastToComparable: each(
		Rule{Strategy: StrategyUnchecked},
		Rule{Strategy: StrategyUnchecked},
		Rule{Strategy: StrategyUnchecked},
		Rule{Strategy: StrategyAlwaysFail, Fault: badCast},
	),
	OpInstanceOfSerializable: same(Rule{Strategy: StrategyConstTrue}),
	OpInstanceOfForeignKind: split(
		Rule{Strategy: StrategyConstTrue},
		Rule{Strategy: StrategyConstFalse},
	),
	OpBox: same(Rule{Strategy: StrategyPreserve}),
	OpUnbox: each(
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyForeignValue, NullFault: nullDeref},
		Rule{Strategy: StrategyOrdinal, NullFault: nullDeref},
		Rule{Strategy: StrategyUnderlyingValue, NullFault: nullDeref},
	),
	OpNoAutobox: each(
		Rule{Strategy: StrategyForeignValue},
		Rule{Strategy: StrategyForeignValue},
		Rule{Strategy: StrategyOrdinal},
		Rule{Strategy: StrategyUnderlyingValue},
	),
}

// Lookup returns the rule for op on variant. It panics on an invalid variant
// or operation, which can only come from a caller bug.
func Lookup(v types.EnumVariant, op Operation) Rule {
	if !v.Valid() {
		panic(fmt.Sprintf("lowering: invalid enum variant %s", v))
	}
	if op == OpInvalid || op >= opCount {
		panic(fmt.Sprintf("lowering: invalid operation %d", op))
	}
	r := ruleTable[op][v.Rep]
	r.Variant = v
	r.Op = op
	return r
}

// Table returns every rule, variants in types.AllEnumVariants order and
// operations in declaration order.
func Table() []Rule {
	variants := types.AllEnumVariants()
	ops := Operations()
	out := make([]Rule, 0, len(variants)*len(ops))
	for _, v := range variants {
		for _, op := range ops {
			out = append(out, Lookup(v, op))
		}
	}
	return out
}

// TriggersClinit reports whether op runs the static initializer on any
// variant.
func TriggersClinit(op Operation) bool {
	return op == OpDevirtualizedCall
}
