package enums

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"lowerc/internal/diag"
	"lowerc/internal/types"
)

func enumDecl(t *testing.T, in *types.Interner, name string, native bool, members ...Member) Decl {
	t.Helper()
	id, err := in.Intern(types.MakeEnum(name))
	if err != nil {
		t.Fatalf("intern %s: %v", name, err)
	}
	return Decl{Type: id, Name: name, Native: native, Constants: []string{"A", "B"}, Members: members}
}

func TestClassifyVariants(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	list, err := in.Intern(types.MakeInterface("java.util.List", b.String))
	if err != nil {
		t.Fatalf("intern list: %v", err)
	}

	cases := []struct {
		name    string
		native  bool
		members []Member
		want    types.EnumVariant
		wantErr error
	}{
		{"NativeNoValue", true, nil, types.NativeValueless, nil},
		{"NativeString", true, []Member{{Name: "value", Type: b.String}}, types.NativeCustomValue(types.ValueString), nil},
		{"NativeShort", true, []Member{{Name: "value", Type: b.Short}}, types.NativeCustomValue(types.ValueNumber), nil},
		{"NativeBool", true, []Member{{Name: "value", Type: b.BooleanBox}}, types.NativeCustomValue(types.ValueBoolean), nil},
		{"Plain", false, nil, types.BoxedOrdinal, nil},
		{"PlainStaticValue", false, []Member{{Name: "value", Type: b.String, Static: true}}, types.BoxedOrdinal, nil},
		{"BoxedString", false, []Member{{Name: "value", Type: b.String}}, types.BoxedCustomValue(types.ValueString), nil},
		{"BoxedMarked", false, []Member{{Name: "raw", Type: b.Double, CustomValue: true}}, types.BoxedCustomValue(types.ValueNumber), nil},
		{"BoxedBool", false, []Member{{Name: "value", Type: b.Boolean}}, types.BoxedCustomValue(types.ValueBoolean), nil},
		{"BoxedList", false, []Member{{Name: "value", Type: list}}, types.EnumVariant{}, ErrInvalidCustomValueKind},
		{"BoxedChar", false, []Member{{Name: "value", Type: b.Char}}, types.EnumVariant{}, ErrInvalidCustomValueKind},
		{"NativeObject", true, []Member{{Name: "value", Type: b.Object}}, types.EnumVariant{}, ErrInvalidCustomValueKind},
	}

	c := NewClassifier(in)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := enumDecl(t, in, "pkg."+tc.name, tc.native, tc.members...)
			out := c.Classify(d)
			if tc.wantErr != nil {
				if out.Err == nil || !errors.Is(out.Err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, out.Err)
				}
				if len(out.Diagnostics) != 1 || out.Diagnostics[0].Severity != diag.SevError {
					t.Fatalf("expected one error diagnostic, got %+v", out.Diagnostics)
				}
				return
			}
			if out.Err != nil {
				t.Fatalf("unexpected error %v", out.Err)
			}
			if out.Info.Variant != tc.want {
				t.Fatalf("variant = %s, want %s", out.Info.Variant, tc.want)
			}
		})
	}
}

func TestAmbiguousCustomValueFirstWins(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	d := enumDecl(t, in, "pkg.Two", false,
		Member{Name: "code", Type: b.Int, CustomValue: true},
		Member{Name: "value", Type: b.String},
	)
	out := NewClassifier(in).Classify(d)
	if out.Err != nil {
		t.Fatalf("ambiguity must not exclude: %v", out.Err)
	}
	if out.Info.Variant != types.BoxedCustomValue(types.ValueNumber) || out.Info.Member != "code" {
		t.Fatalf("first declared member must win, got %s via %q", out.Info.Variant, out.Info.Member)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Code != diag.EnumAmbiguousCustomValue || out.Diagnostics[0].Severity != diag.SevWarning {
		t.Fatalf("expected one ENM2002 warning, got %+v", out.Diagnostics)
	}
}

func TestDuplicateConstantAndMissingMember(t *testing.T) {
	in := types.NewInterner()
	dup := enumDecl(t, in, "pkg.Dup", false)
	dup.Constants = []string{"A", "B", "A"}
	if out := NewClassifier(in).Classify(dup); !errors.Is(out.Err, ErrDuplicateConstant) {
		t.Fatalf("expected duplicate constant, got %v", out.Err)
	}

	missing := enumDecl(t, in, "pkg.Missing", true)
	missing.HasCustomValue = true
	if out := NewClassifier(in).Classify(missing); !errors.Is(out.Err, ErrMissingCustomValueMember) {
		t.Fatalf("expected missing member, got %v", out.Err)
	}
}

func TestNotAnEnum(t *testing.T) {
	in := types.NewInterner()
	d := Decl{Type: in.Builtins().String, Name: "java.lang.String"}
	if out := NewClassifier(in).Classify(d); !errors.Is(out.Err, ErrNotAnEnum) {
		t.Fatalf("expected not-an-enum, got %v", out.Err)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	d := enumDecl(t, in, "pkg.Det", true,
		Member{Name: "value", Type: b.String},
		Member{Name: "other", Type: b.Int, CustomValue: true},
	)
	c := NewClassifier(in)
	first := c.Classify(d)
	for i := 0; i < 50; i++ {
		again := c.Classify(d)
		if again.Info.Variant != first.Info.Variant || again.Info.Member != first.Info.Member ||
			len(again.Diagnostics) != len(first.Diagnostics) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestMapping(t *testing.T) {
	cases := []struct {
		d    Decl
		want string
	}{
		{Decl{Name: "pkg.Main$NativeEnum", Native: true, Namespace: "test"}, "test.NativeEnum"},
		{Decl{Name: "pkg.StringNativeEnum", Native: true, Namespace: "test", JSName: "NativeEnum"}, "test.NativeEnum"},
		{Decl{Name: "pkg.Global", Native: true}, "Global"},
		{Decl{Name: "pkg.Boxed", Namespace: "test"}, ""},
	}
	for _, tc := range cases {
		if got := tc.d.Mapping(); got != tc.want {
			t.Fatalf("%s: mapping %q, want %q", tc.d.Name, got, tc.want)
		}
	}
}

func TestRegistryExcludesOnlyOffender(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	list, _ := in.Intern(types.MakeInterface("java.util.List", b.String))

	good := enumDecl(t, in, "pkg.Good", false)
	bad := enumDecl(t, in, "pkg.Bad", false, Member{Name: "value", Type: list})
	native1 := enumDecl(t, in, "pkg.First", true)
	native1.Namespace, native1.JSName = "test", "NativeEnum"
	native2 := enumDecl(t, in, "pkg.Second", true, Member{Name: "value", Type: b.String})
	native2.Namespace, native2.JSName = "test", "NativeEnum"

	reg := NewRegistry(in)
	bag := diag.NewBag(10)
	rep := diag.NewSyncReporter(diag.BagReporter{Bag: bag})
	for _, d := range []Decl{good, bad, native1, native2} {
		if _, _, err := reg.Register(context.Background(), d, rep); err != nil {
			t.Fatalf("register %s: %v", d.Name, err)
		}
	}
	if !reg.IsExcluded(bad.Type) || reg.IsExcluded(good.Type) {
		t.Fatalf("exclusion leaked")
	}
	if _, ok := in.EnumInfo(bad.Type); ok {
		t.Fatalf("excluded enum was tagged")
	}
	if info, ok := in.EnumInfo(good.Type); !ok || info.Variant != types.BoxedOrdinal {
		t.Fatalf("good enum not tagged: %+v", info)
	}
	if got := reg.SharedMapping(native1.Type); len(got) != 2 {
		t.Fatalf("shared mapping = %v", got)
	}
	if ex := reg.Excluded(); len(ex) != 1 || ex[0].Enum != "pkg.Bad" {
		t.Fatalf("excluded = %v", ex)
	}
	if !bag.HasErrors() || bag.Len() != 1 {
		t.Fatalf("expected one error diagnostic, got %d", bag.Len())
	}
}

func TestRegistryConcurrent(t *testing.T) {
	in := types.NewInterner()
	decls := make([]Decl, 32)
	for i := range decls {
		decls[i] = enumDecl(t, in, fmt.Sprintf("pkg.E%d", i), i%2 == 0)
	}
	reg := NewRegistry(in)
	var mu sync.Mutex
	count := 0
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(8)
	for _, d := range decls {
		g.Go(func() error {
			_, ok, err := reg.Register(ctx, d, diag.NopReporter{})
			if ok {
				mu.Lock()
				count++
				mu.Unlock()
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("register: %v", err)
	}
	if count != len(decls) {
		t.Fatalf("registered %d of %d", count, len(decls))
	}
}
