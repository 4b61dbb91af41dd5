package vm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"lowerc/internal/lowering"
	"lowerc/internal/types"
)

// Class names the evaluator understands for instanceof and casts.
const (
	ClassObject       = types.NameObject
	ClassString       = types.NameString
	ClassDouble       = types.NameDouble
	ClassNumber       = types.NameNumber
	ClassBoolean      = types.NameBoolean
	ClassInteger      = types.NameInteger
	ClassEnum         = types.NameEnum
	ClassComparable   = types.NameComparable
	ClassSerializable = types.NameSerializable
)

// Method is the body of an enum instance method, called with the receiver.
type Method func(ctx context.Context, rt *Runtime, self Value, args []Value) (Value, error)

// EnumDef declares an enum to the runtime.
type EnumDef struct {
	ID   types.TypeID
	Name string
	Info types.EnumInfo
	// Values holds the custom value of each constant, in constant order.
	// Native string enums may leave it empty: constants then carry their
	// names.
	Values  []Value
	Methods map[string]Method
	// Init is the static initializer.
	Init lowering.Initializer
}

type enumType struct {
	def       EnumDef
	constants []Value
}

// Runtime holds defined enums and their initialisation gates.
type Runtime struct {
	mu      sync.RWMutex
	enums   map[types.TypeID]*enumType
	gates   *lowering.Gates
	nextRef atomic.Uint64
}

func New() *Runtime {
	return &Runtime{
		enums: make(map[types.TypeID]*enumType),
		gates: lowering.NewGates(),
	}
}

// Define creates the constants of def. Defining never runs the static
// initializer.
func (rt *Runtime) Define(def EnumDef) error {
	v := def.Info.Variant
	if !v.Valid() {
		return fmt.Errorf("define %s: invalid variant %s", def.Name, v)
	}
	n := len(def.Info.Constants)
	values := def.Values
	if v.HasCustomValue() && len(values) == 0 && v.Kind == types.ValueString && v.IsNative() {
		values = make([]Value, n)
		for i, c := range def.Info.Constants {
			values[i] = String(c)
		}
	}
	if v.HasCustomValue() {
		if len(values) != n {
			return fmt.Errorf("define %s: %d values for %d constants", def.Name, len(values), n)
		}
		want := foreignKindOf(v.Kind)
		for i, val := range values {
			if val.Kind != want {
				return fmt.Errorf("define %s.%s: value kind %s, want %s", def.Name, def.Info.Constants[i], val.Kind, want)
			}
		}
	}

	et := &enumType{def: def, constants: make([]Value, n)}
	for i, name := range def.Info.Constants {
		switch v.Rep {
		case types.RepNativeValueless:
			c := String(name)
			c.Enum, c.Mapping = def.ID, def.Info.Namespace
			et.constants[i] = c
		case types.RepNativeCustomValue:
			c := values[i].plain()
			c.Enum, c.Mapping = def.ID, def.Info.Namespace
			et.constants[i] = c
		case types.RepBoxedOrdinal:
			et.constants[i] = Value{Kind: VKEnum, Enum: def.ID, Ordinal: i, Under: VKNull, ref: rt.nextRef.Add(1)}
		case types.RepBoxedCustomValue:
			u := values[i]
			et.constants[i] = Value{
				Kind: VKEnum, Enum: def.ID, Ordinal: i, Under: u.Kind,
				Str: u.Str, Num: u.Num, Bool: u.Bool,
				ref: rt.nextRef.Add(1),
			}
		}
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, dup := rt.enums[def.ID]; dup {
		return fmt.Errorf("define %s: already defined", def.Name)
	}
	rt.enums[def.ID] = et
	return nil
}

func foreignKindOf(k types.ValueKind) ValueKind {
	switch k {
	case types.ValueString:
		return VKString
	case types.ValueNumber:
		return VKNumber
	case types.ValueBoolean:
		return VKBoolean
	default:
		return VKNull
	}
}

func (rt *Runtime) lookup(id types.TypeID) (*enumType, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	et, ok := rt.enums[id]
	if !ok {
		return nil, fmt.Errorf("enum %d is not defined", id)
	}
	return et, nil
}

func (rt *Runtime) mustLookup(id types.TypeID) *enumType {
	et, err := rt.lookup(id)
	if err != nil {
		panic(err)
	}
	return et
}

// Gate returns the static initialisation gate of enum id.
func (rt *Runtime) Gate(id types.TypeID) *lowering.Gate {
	et := rt.mustLookup(id)
	return rt.gates.For(id, et.def.Name, et.def.Init)
}

// NewObject allocates a plain object of class.
func (rt *Runtime) NewObject(class string) Value {
	return Value{Kind: VKObject, Class: class, ref: rt.nextRef.Add(1)}
}

// IntegerBox allocates a java.lang.Integer, which unlike Double is not a
// foreign number.
func (rt *Runtime) IntegerBox(n int32) Value {
	v := rt.NewObject(ClassInteger)
	v.Num = float64(n)
	return v
}

// Same is the target runtime's reference comparison: foreign values compare
// by value, objects by identity.
func Same(a, b Value) bool {
	switch {
	case a.IsNull() || b.IsNull():
		return a.IsNull() && b.IsNull()
	case a.IsForeign():
		return sameForeign(a, b)
	default:
		return a.Kind == b.Kind && a.ref == b.ref
	}
}
