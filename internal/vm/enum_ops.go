package vm

import (
	"context"
	"fmt"
	"hash/fnv"

	"fortio.org/safecast"

	"lowerc/internal/lowering"
	"lowerc/internal/types"
)

// rule looks up the lowering rule for op on enum id and checks the null
// operand against it.
func (rt *Runtime) rule(id types.TypeID, op lowering.Operation, v Value) (*enumType, lowering.Rule, error) {
	et, err := rt.lookup(id)
	if err != nil {
		return nil, lowering.Rule{}, err
	}
	r := lowering.Lookup(et.def.Info.Variant, op)
	if v.IsNull() && r.NullFault != lowering.FaultNone {
		return et, r, fault(r.NullFault, op, "null %s", et.def.Name)
	}
	return et, r, nil
}

// Constant reads constant name of enum id. It never initializes the enum.
func (rt *Runtime) Constant(id types.TypeID, name string) (Value, error) {
	et, err := rt.lookup(id)
	if err != nil {
		return Value{}, err
	}
	if r := lowering.Lookup(et.def.Info.Variant, lowering.OpConstantRead); r.Strategy != lowering.StrategyConstant {
		return Value{}, unexpected(r)
	}
	for i, c := range et.def.Info.Constants {
		if c == name {
			return et.constants[i], nil
		}
	}
	return Value{}, fmt.Errorf("%s has no constant %s", et.def.Name, name)
}

// MustConstant is Constant for tests and fixed programs.
func (rt *Runtime) MustConstant(id types.TypeID, name string) Value {
	v, err := rt.Constant(id, name)
	if err != nil {
		panic(err)
	}
	return v
}

// Switch returns the index of the constant v selects, or -1 for the default
// branch.
func (rt *Runtime) Switch(id types.TypeID, v Value) (int, error) {
	et, r, err := rt.rule(id, lowering.OpSwitch, v)
	if err != nil {
		return -1, err
	}
	switch r.Strategy {
	case lowering.StrategyForeignValue:
		return et.indexOfForeign(v), nil
	case lowering.StrategyOrdinal:
		if v.Kind == VKEnum && v.Enum == id {
			return v.Ordinal, nil
		}
		return -1, nil
	case lowering.StrategyUnderlyingValue:
		if v.Kind != VKEnum {
			return -1, nil
		}
		u := v.underlying()
		for i, c := range et.constants {
			if sameForeign(c.underlying(), u) {
				return i, nil
			}
		}
		return -1, nil
	}
	return -1, unexpected(r)
}

func (et *enumType) indexOfForeign(v Value) int {
	for i, c := range et.constants {
		if sameForeign(c, v) {
			return i
		}
	}
	return -1
}

// Identity is == between two values statically typed as enum id.
func (rt *Runtime) Identity(id types.TypeID, a, b Value) (bool, error) {
	_, r, err := rt.rule(id, lowering.OpIdentity, a)
	if err != nil {
		return false, err
	}
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull(), nil
	}
	switch r.Strategy {
	case lowering.StrategyForeignValue:
		return sameForeign(a, b), nil
	case lowering.StrategyReference:
		return a.Kind == VKEnum && b.Kind == VKEnum && a.ref == b.ref, nil
	}
	return false, unexpected(r)
}

// Equals is recv.equals(other) with recv typed as enum id.
func (rt *Runtime) Equals(id types.TypeID, recv, other Value) (bool, error) {
	_, r, err := rt.rule(id, lowering.OpEquals, recv)
	if err != nil {
		return false, err
	}
	switch r.Strategy {
	case lowering.StrategyForeignValue:
		return sameForeign(recv, other), nil
	case lowering.StrategyReference:
		return other.Kind == VKEnum && recv.ref == other.ref, nil
	}
	return false, unexpected(r)
}

// HashCode is recv.hashCode() with recv typed as enum id.
func (rt *Runtime) HashCode(id types.TypeID, recv Value) (int32, error) {
	_, r, err := rt.rule(id, lowering.OpHashCode, recv)
	if err != nil {
		return 0, err
	}
	switch r.Strategy {
	case lowering.StrategyForeignValue:
		return foreignHash(recv), nil
	case lowering.StrategyInstanceHash:
		h := fnv.New32a()
		ord, err := safecast.Conv[uint32](recv.Ordinal)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(h, "%d/%d", recv.Enum, ord)
		return int32(h.Sum32()), nil //nolint:gosec
	}
	return 0, unexpected(r)
}

func foreignHash(v Value) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte{byte(v.Kind)})
	_, _ = h.Write([]byte(v.plain().String()))
	return int32(h.Sum32()) //nolint:gosec
}

// ToString is recv.toString() with recv typed as enum id.
func (rt *Runtime) ToString(id types.TypeID, recv Value) (string, error) {
	_, r, err := rt.rule(id, lowering.OpToString, recv)
	if err != nil {
		return "", err
	}
	switch r.Strategy {
	case lowering.StrategyForeignValue:
		return recv.plain().String(), nil
	case lowering.StrategyOrdinal:
		return formatNumber(float64(recv.Ordinal)), nil
	case lowering.StrategyUnderlyingValue:
		return recv.underlying().String(), nil
	}
	return "", unexpected(r)
}

// InstanceOf is v instanceof <enum id>. Null is never an instance.
func (rt *Runtime) InstanceOf(id types.TypeID, v Value) (bool, error) {
	et, r, err := rt.rule(id, lowering.OpInstanceOf, v)
	if err != nil {
		return false, err
	}
	if v.IsNull() {
		return false, nil
	}
	switch r.Strategy {
	case lowering.StrategyMappingCheck:
		return v.IsForeign() && v.Enum.IsValid() && v.Mapping == et.def.Info.Namespace, nil
	case lowering.StrategyExactType:
		return v.Kind == VKEnum && v.Enum == id, nil
	}
	return false, unexpected(r)
}

// Cast is (<enum id>) v. Null always passes.
func (rt *Runtime) Cast(id types.TypeID, v Value) (Value, error) {
	et, r, err := rt.rule(id, lowering.OpCast, v)
	if err != nil {
		return Value{}, err
	}
	if v.IsNull() {
		return v, nil
	}
	ok := false
	switch r.Strategy {
	case lowering.StrategyUnchecked:
		ok = true
	case lowering.StrategyKindCheck:
		ok = v.Kind == foreignKindOf(et.def.Info.Variant.Kind)
	case lowering.StrategyExactType:
		ok = v.Kind == VKEnum && v.Enum == id
	default:
		return Value{}, unexpected(r)
	}
	if !ok {
		return Value{}, fault(r.Fault, lowering.OpCast, "%s cannot be cast to %s", describe(v), et.def.Name)
	}
	return v, nil
}

// Ordinal is recv.ordinal(). It never initializes the enum.
func (rt *Runtime) Ordinal(id types.TypeID, recv Value) (int, error) {
	et, r, err := rt.rule(id, lowering.OpOrdinal, recv)
	if err != nil {
		return 0, err
	}
	if recv.Kind == VKEnum {
		return recv.Ordinal, nil
	}
	if i := et.indexOfForeign(recv); i >= 0 {
		return i, nil
	}
	return 0, fault(lowering.FaultInvalidCast, r.Op, "%s is not a constant of %s", describe(recv), et.def.Name)
}

// ValueOf reads the custom value member. It never initializes the enum.
func (rt *Runtime) ValueOf(id types.TypeID, recv Value) (Value, error) {
	_, r, err := rt.rule(id, lowering.OpValueRead, recv)
	if err != nil {
		return Value{}, err
	}
	return rt.unwrap(r, recv)
}

// Unbox consumes recv through a slot of the underlying primitive type.
func (rt *Runtime) Unbox(id types.TypeID, recv Value) (Value, error) {
	_, r, err := rt.rule(id, lowering.OpUnbox, recv)
	if err != nil {
		return Value{}, err
	}
	return rt.unwrap(r, recv)
}

// NoAutobox passes v to a slot that opts out of boxing.
func (rt *Runtime) NoAutobox(id types.TypeID, v Value) (Value, error) {
	_, r, err := rt.rule(id, lowering.OpNoAutobox, v)
	if err != nil || v.IsNull() {
		return v, err
	}
	return rt.unwrap(r, v)
}

func (rt *Runtime) unwrap(r lowering.Rule, v Value) (Value, error) {
	switch r.Strategy {
	case lowering.StrategyForeignValue:
		return v.plain(), nil
	case lowering.StrategyOrdinal:
		return Number(float64(v.Ordinal)), nil
	case lowering.StrategyUnderlyingValue:
		return v.underlying(), nil
	}
	return Value{}, unexpected(r)
}

// Box materialises v in a slot of generic or inferred type.
func (rt *Runtime) Box(id types.TypeID, v Value) (Value, error) {
	_, r, err := rt.rule(id, lowering.OpBox, v)
	if err != nil {
		return Value{}, err
	}
	if r.Strategy != lowering.StrategyPreserve {
		return Value{}, unexpected(r)
	}
	return v, nil
}

// Call invokes instance method name through the declared enum type. This
// is the devirtualized access that runs the static initializer.
func (rt *Runtime) Call(ctx context.Context, id types.TypeID, recv Value, name string, args ...Value) (Value, error) {
	et, r, err := rt.rule(id, lowering.OpDevirtualizedCall, recv)
	if err != nil {
		return Value{}, err
	}
	m, ok := et.def.Methods[name]
	if !ok {
		return Value{}, fmt.Errorf("%s has no method %s", et.def.Name, name)
	}
	if err := rt.Gate(id).Access(ctx, et.def.Info.Variant, r.Op); err != nil {
		return Value{}, err
	}
	return m(ctx, rt, recv, args)
}

func unexpected(r lowering.Rule) error {
	return fmt.Errorf("vm: no evaluation for strategy %s (%s)", r.Strategy, r)
}

func describe(v Value) string {
	switch v.Kind {
	case VKObject:
		return v.Class
	case VKEnum:
		return fmt.Sprintf("enum %d", v.Enum)
	case VKNull:
		return "null"
	default:
		return fmt.Sprintf("%s %q", v.Kind, v.plain().String())
	}
}
