package vm

import (
	"context"
	"errors"
	"testing"

	"lowerc/internal/lowering"
	"lowerc/internal/types"
)

const (
	idE types.TypeID = iota + 100
	idF
	idS
	idN
	idP
	idQ
	idB
)

func define(t *testing.T, rt *Runtime, def EnumDef) {
	t.Helper()
	if err := rt.Define(def); err != nil {
		t.Fatalf("define %s: %v", def.Name, err)
	}
}

func testRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt := New()
	define(t, rt, EnumDef{ID: idE, Name: "p.E", Info: types.EnumInfo{
		Variant: types.NativeValueless, Namespace: "ns.E", Constants: []string{"OK", "CANCEL"},
	}})
	define(t, rt, EnumDef{ID: idF, Name: "p.F", Info: types.EnumInfo{
		Variant: types.NativeValueless, Namespace: "ns.F", Constants: []string{"OK"},
	}})
	define(t, rt, EnumDef{ID: idS, Name: "p.S", Info: types.EnumInfo{
		Variant: types.NativeCustomValue(types.ValueString), Namespace: "ns.S",
		Constants: []string{"A", "B"}, Member: "value",
	}, Values: []Value{String("a"), String("b")}})
	define(t, rt, EnumDef{ID: idN, Name: "p.N", Info: types.EnumInfo{
		Variant: types.NativeCustomValue(types.ValueNumber), Namespace: "ns.N",
		Constants: []string{"ONE", "TWO"}, Member: "value",
	}, Values: []Value{Number(1), Number(2)}})
	define(t, rt, EnumDef{ID: idP, Name: "p.P", Info: types.EnumInfo{
		Variant: types.BoxedOrdinal, Constants: []string{"X", "Y", "Z"},
	}})
	define(t, rt, EnumDef{ID: idQ, Name: "p.Q", Info: types.EnumInfo{
		Variant: types.BoxedOrdinal, Constants: []string{"X"},
	}})
	define(t, rt, EnumDef{ID: idB, Name: "p.B", Info: types.EnumInfo{
		Variant: types.BoxedCustomValue(types.ValueNumber), Constants: []string{"TEN", "TWENTY"}, Member: "value",
	}, Values: []Value{Number(10), Number(20)}})
	return rt
}

func TestNativeValueless(t *testing.T) {
	rt := testRuntime(t)
	ok := rt.MustConstant(idE, "OK")
	cancel := rt.MustConstant(idE, "CANCEL")

	if i, err := rt.Switch(idE, cancel); err != nil || i != 1 {
		t.Fatalf("switch CANCEL = %d, %v", i, err)
	}
	if i, err := rt.Switch(idE, String("nope")); err != nil || i != -1 {
		t.Fatalf("switch unknown = %d, %v", i, err)
	}
	if s, err := rt.ToString(idE, ok); err != nil || s != "OK" {
		t.Fatalf("toString = %q, %v", s, err)
	}
	if eq, _ := rt.Equals(idE, ok, String("OK")); !eq {
		t.Fatalf("OK.equals(\"OK\") = false")
	}
	if !rt.InstanceOfClass(ok, ClassString) {
		t.Fatalf("native constant is not a String")
	}
	if _, err := rt.Cast(idE, String("anything")); err != nil {
		t.Fatalf("valueless cast is unchecked: %v", err)
	}
	if _, err := rt.Cast(idE, Number(3)); err != nil {
		t.Fatalf("valueless cast is unchecked: %v", err)
	}
	if v, err := rt.ValueOf(idE, ok); err != nil || !Same(v, String("OK")) {
		t.Fatalf("value = %v, %v", v, err)
	}
	if ord, err := rt.Ordinal(idE, cancel); err != nil || ord != 1 {
		t.Fatalf("ordinal = %d, %v", ord, err)
	}
}

func TestNativeCrossType(t *testing.T) {
	rt := testRuntime(t)
	eOK := rt.MustConstant(idE, "OK")
	fOK := rt.MustConstant(idF, "OK")

	if same, _ := rt.Identity(idE, eOK, fOK); !same {
		t.Fatalf("native constants with equal values are not identical")
	}
	if eq, _ := rt.Equals(idE, eOK, fOK); !eq {
		t.Fatalf("native constants with equal values are not equal")
	}
	if in, _ := rt.InstanceOf(idE, fOK); in {
		t.Fatalf("F.OK instanceof E")
	}
	if in, _ := rt.InstanceOf(idE, String("OK")); in {
		t.Fatalf("plain string instanceof E")
	}
	if in, _ := rt.InstanceOf(idE, eOK); !in {
		t.Fatalf("E.OK not instanceof E")
	}
	h1, _ := rt.HashCode(idE, eOK)
	h2, _ := rt.HashObject(String("OK"))
	if h1 != h2 {
		t.Fatalf("hash %d != %d", h1, h2)
	}
	if _, err := rt.CompareTo(eOK, fOK); !errors.Is(err, ErrInvalidComparison) {
		t.Fatalf("cross-mapping compareTo: %v", err)
	}
	if c, err := rt.CompareTo(eOK, rt.MustConstant(idE, "CANCEL")); err != nil || c <= 0 {
		t.Fatalf("OK.compareTo(CANCEL) = %d, %v", c, err)
	}
}

func TestNativeCustomValueCasts(t *testing.T) {
	rt := testRuntime(t)
	if _, err := rt.Cast(idS, String("zz")); err != nil {
		t.Fatalf("string to string enum: %v", err)
	}
	if _, err := rt.Cast(idS, Number(1)); !errors.Is(err, ErrInvalidCast) {
		t.Fatalf("number to string enum: %v", err)
	}
	if _, err := rt.Cast(idN, Number(1)); err != nil {
		t.Fatalf("double to number enum: %v", err)
	}
	if _, err := rt.Cast(idN, rt.IntegerBox(1)); !errors.Is(err, ErrInvalidCast) {
		t.Fatalf("Integer to number enum: %v", err)
	}
	if _, err := rt.Cast(idN, Null()); err != nil {
		t.Fatalf("null cast: %v", err)
	}

	two := rt.MustConstant(idN, "TWO")
	if v, err := rt.ValueOf(idN, two); err != nil || !Same(v, Number(2)) {
		t.Fatalf("value = %v, %v", v, err)
	}
	if s, _ := rt.ToString(idN, two); s != "2" {
		t.Fatalf("toString = %q", s)
	}
	if !rt.InstanceOfClass(two, ClassDouble) || !rt.InstanceOfClass(two, ClassNumber) {
		t.Fatalf("number enum constant is not a Double")
	}
	if rt.InstanceOfClass(two, ClassEnum) {
		t.Fatalf("native constant instanceof Enum")
	}
	if _, err := rt.CastToClass(two, ClassEnum); !errors.Is(err, ErrInvalidCast) {
		t.Fatalf("cast to Enum: %v", err)
	}
	if _, err := rt.CastToClass(two, ClassComparable); err != nil {
		t.Fatalf("cast to Comparable: %v", err)
	}
}

func TestBoxedOrdinal(t *testing.T) {
	rt := testRuntime(t)
	x := rt.MustConstant(idP, "X")
	y := rt.MustConstant(idP, "Y")
	qx := rt.MustConstant(idQ, "X")

	if ord, _ := rt.Ordinal(idP, y); ord != 1 {
		t.Fatalf("ordinal = %d", ord)
	}
	if s, _ := rt.ToString(idP, y); s != "1" {
		t.Fatalf("toString = %q", s)
	}
	if c, err := rt.CompareTo(x, y); err != nil || c >= 0 {
		t.Fatalf("X.compareTo(Y) = %d, %v", c, err)
	}
	if _, err := rt.CompareTo(x, qx); !errors.Is(err, ErrInvalidComparison) {
		t.Fatalf("compareTo across enums: %v", err)
	}
	if same, _ := rt.Identity(idP, x, x); !same {
		t.Fatalf("X != X")
	}
	if same, _ := rt.Identity(idP, x, y); same {
		t.Fatalf("X == Y")
	}
	if eq, _ := rt.Equals(idP, x, qx); eq {
		t.Fatalf("P.X equals Q.X")
	}
	if eq, err := rt.Equals(idP, x, Null()); err != nil || eq {
		t.Fatalf("X.equals(null) = %v, %v", eq, err)
	}
	if _, err := rt.Equals(idP, Null(), x); !errors.Is(err, ErrNullEnumDereference) {
		t.Fatalf("null.equals: %v", err)
	}
	if _, err := rt.Cast(idP, qx); !errors.Is(err, ErrInvalidCast) {
		t.Fatalf("Q.X cast to P: %v", err)
	}
	if in, _ := rt.InstanceOf(idP, qx); in {
		t.Fatalf("Q.X instanceof P")
	}

	if !rt.InstanceOfClass(x, ClassComparable) || !rt.InstanceOfClass(x, ClassSerializable) {
		t.Fatalf("boxed ordinal is Comparable and Serializable")
	}
	if rt.InstanceOfClass(x, ClassEnum) || rt.InstanceOfClass(x, ClassNumber) {
		t.Fatalf("boxed ordinal instanceof Enum or Number")
	}
	if v, _ := rt.Unbox(idP, y); !Same(v, Number(1)) {
		t.Fatalf("unbox = %v", v)
	}
	if v, _ := rt.Box(idP, y); !Same(v, y) {
		t.Fatalf("box does not preserve the instance")
	}
}

func TestBoxKeepsNativeMapping(t *testing.T) {
	rt := testRuntime(t)
	cases := []struct {
		id    types.TypeID
		name  string
		index int
		plain Value
	}{
		{idE, "CANCEL", 1, String("CANCEL")},
		{idS, "B", 1, String("b")},
		{idN, "TWO", 1, Number(2)},
	}
	for _, tc := range cases {
		c := rt.MustConstant(tc.id, tc.name)
		boxed, err := rt.Box(tc.id, c)
		if err != nil {
			t.Fatalf("%s.%s: box: %v", rt.EnumName(tc.id), tc.name, err)
		}
		if boxed != c || boxed.Enum != tc.id || !boxed.IsEnum() || boxed.IsBoxedEnum() {
			t.Fatalf("%s.%s: box changed the value: %+v, want %+v", rt.EnumName(tc.id), tc.name, boxed, c)
		}
		if boxed.Mapping == "" || boxed.Mapping != c.Mapping {
			t.Fatalf("%s.%s: boxed mapping = %q, want %q", rt.EnumName(tc.id), tc.name, boxed.Mapping, c.Mapping)
		}
		if !Same(boxed, tc.plain) {
			t.Fatalf("%s.%s: boxed %v is not the foreign value %v", rt.EnumName(tc.id), tc.name, boxed, tc.plain)
		}
		if i, err := rt.Switch(tc.id, boxed); err != nil || i != tc.index {
			t.Fatalf("%s.%s: switch on boxed = %d, %v", rt.EnumName(tc.id), tc.name, i, err)
		}
		if eq, err := rt.Equals(tc.id, boxed, c); err != nil || !eq {
			t.Fatalf("%s.%s: boxed equals original = %v, %v", rt.EnumName(tc.id), tc.name, eq, err)
		}
		if in, err := rt.InstanceOf(tc.id, boxed); err != nil || !in {
			t.Fatalf("%s.%s: boxed instanceof = %v, %v", rt.EnumName(tc.id), tc.name, in, err)
		}
		if v, err := rt.NoAutobox(tc.id, boxed); err != nil || v != tc.plain {
			t.Fatalf("%s.%s: no-autobox of boxed = %+v, %v", rt.EnumName(tc.id), tc.name, v, err)
		}
	}
}

func TestBoxedCustomValue(t *testing.T) {
	rt := testRuntime(t)
	ten := rt.MustConstant(idB, "TEN")

	if s, _ := rt.ToString(idB, ten); s != "10" {
		t.Fatalf("toString = %q", s)
	}
	if i, _ := rt.Switch(idB, rt.MustConstant(idB, "TWENTY")); i != 1 {
		t.Fatalf("switch = %d", i)
	}
	if _, err := rt.CompareTo(ten, ten); !errors.Is(err, ErrInvalidComparison) {
		t.Fatalf("compareTo: %v", err)
	}
	if rt.InstanceOfClass(ten, ClassComparable) {
		t.Fatalf("boxed custom value instanceof Comparable")
	}
	if _, err := rt.CastToClass(ten, ClassComparable); !errors.Is(err, ErrInvalidCast) {
		t.Fatalf("cast to Comparable: %v", err)
	}
	if rt.InstanceOfClass(ten, ClassDouble) {
		t.Fatalf("boxed constant instanceof Double")
	}
	if v, _ := rt.NoAutobox(idB, ten); !Same(v, Number(10)) {
		t.Fatalf("no-autobox = %v", v)
	}
	if v, err := rt.NoAutobox(idB, Null()); err != nil || !v.IsNull() {
		t.Fatalf("no-autobox null = %v, %v", v, err)
	}
	if _, err := rt.Unbox(idB, Null()); !errors.Is(err, ErrNullEnumDereference) {
		t.Fatalf("unbox null: %v", err)
	}
}

func TestNullSwitch(t *testing.T) {
	rt := testRuntime(t)
	for _, id := range []types.TypeID{idE, idS, idP, idB} {
		if _, err := rt.Switch(id, Null()); !errors.Is(err, ErrNullEnumDereference) {
			t.Fatalf("%s: switch on null: %v", rt.EnumName(id), err)
		}
	}
}

func TestClinitGating(t *testing.T) {
	rt := New()
	inits := 0
	define(t, rt, EnumDef{
		ID: idP, Name: "p.WithClinit",
		Info: types.EnumInfo{Variant: types.BoxedOrdinal, Constants: []string{"A", "B"}},
		Init: func(context.Context) error {
			inits++
			return nil
		},
		Methods: map[string]Method{
			"name": func(_ context.Context, rt *Runtime, self Value, _ []Value) (Value, error) {
				return String(rt.mustLookup(idP).def.Info.Constants[self.Ordinal]), nil
			},
		},
	})
	ctx := context.Background()
	b := rt.MustConstant(idP, "B")
	_, _ = rt.Cast(idP, b)
	_, _ = rt.InstanceOf(idP, b)
	_, _ = rt.Ordinal(idP, b)
	_, _ = rt.ValueOf(idP, b)
	if inits != 0 || rt.Gate(idP).State() != lowering.Uninitialized {
		t.Fatalf("non-triggering accesses ran the initializer %d times", inits)
	}

	for i := 0; i < 2; i++ {
		v, err := rt.Call(ctx, idP, b, "name")
		if err != nil || !Same(v, String("B")) {
			t.Fatalf("call = %v, %v", v, err)
		}
	}
	if inits != 1 {
		t.Fatalf("initializer ran %d times", inits)
	}
	if _, err := rt.Call(ctx, idP, Null(), "name"); !errors.Is(err, ErrNullEnumDereference) {
		t.Fatalf("call on null: %v", err)
	}
}

func TestClinitErrorIsSticky(t *testing.T) {
	rt := New()
	boom := errors.New("boom")
	define(t, rt, EnumDef{
		ID: idP, Name: "p.Broken",
		Info:    types.EnumInfo{Variant: types.BoxedOrdinal, Constants: []string{"A"}},
		Init:    func(context.Context) error { return boom },
		Methods: map[string]Method{"m": func(context.Context, *Runtime, Value, []Value) (Value, error) { return Null(), nil }},
	})
	a := rt.MustConstant(idP, "A")
	for i := 0; i < 2; i++ {
		if _, err := rt.Call(context.Background(), idP, a, "m"); !errors.Is(err, boom) {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if rt.Gate(idP).Runs() != 1 {
		t.Fatalf("initializer re-ran")
	}
}

func TestPlainValues(t *testing.T) {
	rt := New()
	if c, err := rt.CompareTo(String("a"), String("b")); err != nil || c >= 0 {
		t.Fatalf("compare strings = %d, %v", c, err)
	}
	if c, err := rt.CompareTo(rt.IntegerBox(2), rt.IntegerBox(1)); err != nil || c <= 0 {
		t.Fatalf("compare Integers = %d, %v", c, err)
	}
	if _, err := rt.CompareTo(String("a"), Number(1)); !errors.Is(err, ErrInvalidComparison) {
		t.Fatalf("compare string with number: %v", err)
	}
	if _, err := rt.CompareTo(Null(), String("a")); !errors.Is(err, ErrNullEnumDereference) {
		t.Fatalf("compare null: %v", err)
	}
	if s, _ := rt.ToStringObject(rt.IntegerBox(7)); s != "7" {
		t.Fatalf("Integer toString = %q", s)
	}
	if _, err := rt.CastToClass(rt.IntegerBox(1), ClassDouble); !errors.Is(err, ErrInvalidCast) {
		t.Fatalf("Integer cast to Double: %v", err)
	}
	o := rt.NewObject("p.Thing")
	if eq, _ := rt.EqualsObject(o, rt.NewObject("p.Thing")); eq {
		t.Fatalf("distinct objects are equal")
	}
}

func TestDefineRejectsMismatchedValues(t *testing.T) {
	rt := New()
	err := rt.Define(EnumDef{ID: idS, Name: "p.Bad", Info: types.EnumInfo{
		Variant: types.NativeCustomValue(types.ValueString), Constants: []string{"A"},
	}, Values: []Value{Number(1)}})
	if err == nil {
		t.Fatalf("expected kind mismatch")
	}
	if err := rt.Define(EnumDef{ID: idP, Name: "p.NoConstants", Info: types.EnumInfo{Variant: types.EnumVariant{}}}); err == nil {
		t.Fatalf("expected invalid variant")
	}
}
