package build

import (
	"context"
	"errors"
	"testing"

	"lowerc/internal/diag"
	"lowerc/internal/feed"
	"lowerc/internal/testkit"
	"lowerc/internal/types"
)

func newBuilder(t *testing.T, u *feed.Unit) (*Builder, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(50)
	b := New(types.NewInterner(), &diag.BagReporter{Bag: bag})
	if err := b.Types(context.Background(), u); err != nil {
		t.Fatalf("types: %v", err)
	}
	return b, bag
}

func genericsUnit() *feed.Unit {
	return &feed.Unit{
		Types: []feed.TypeDecl{
			{Kind: "interface", Name: "p.I", TypeParams: []feed.TypeParam{{Name: "T"}}},
			{Kind: "class", Name: "p.A", TypeParams: []feed.TypeParam{{Name: "T", Bound: "java.lang.Number"}},
				Interfaces: []string{"p.I<T>"}},
			{Kind: "class", Name: "p.B", Super: "p.A<java.lang.Integer>"},
			{Kind: "class", Name: "p.Foo", Interfaces: []string{"java.lang.Comparable<p.Foo>"}},
			{Kind: "class", Name: "p.Self", TypeParams: []feed.TypeParam{{Name: "T", Bound: "java.lang.Comparable<T>"}}},
		},
	}
}

func TestTypesAndHierarchy(t *testing.T) {
	b, bag := newBuilder(t, genericsUnit())
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	in := b.Interner()
	bID, _ := b.Declared("p.B")
	h, ok := in.HierarchyOf(bID)
	if !ok {
		t.Fatalf("p.B has no hierarchy")
	}
	if got := in.Describe(h.Super); got != "p.A<java.lang.Integer>" {
		t.Fatalf("super = %s", got)
	}

	aID, _ := b.Declared("p.A")
	ha, _ := in.HierarchyOf(aID)
	if ha.Super != in.Builtins().Object || len(ha.Interfaces) != 1 || in.Describe(ha.Interfaces[0]) != "p.I<T>" {
		t.Fatalf("p.A hierarchy = %+v", ha)
	}
	iID, _ := b.Declared("p.I")
	if hi, _ := in.HierarchyOf(iID); hi.Super != types.NoTypeID {
		t.Fatalf("interface got a superclass")
	}

	tv, err := b.ResolveType("T", "p.A")
	if err != nil {
		t.Fatalf("resolve T: %v", err)
	}
	if in.RawOf(tv) != in.Builtins().Number {
		t.Fatalf("raw of A.T = %s", in.Describe(in.RawOf(tv)))
	}
	self, _ := b.ResolveType("T", "p.Self")
	if in.RawOf(self) != in.Builtins().Comparable {
		t.Fatalf("raw of Self.T = %s", in.Describe(in.RawOf(self)))
	}
}

func TestSupertypeCycleIsFatal(t *testing.T) {
	u := &feed.Unit{Types: []feed.TypeDecl{
		{Kind: "class", Name: "p.X", Super: "p.Y"},
		{Kind: "class", Name: "p.Y", Super: "p.Z"},
		{Kind: "class", Name: "p.Z", Super: "p.X<java.lang.String>"},
	}}
	b := New(types.NewInterner(), nil)
	err := b.Types(context.Background(), u)
	if !errors.Is(err, types.ErrMalformedKey) {
		t.Fatalf("err = %v, want malformed key", err)
	}
	var mk *types.MalformedKeyError
	if !errors.As(err, &mk) || mk.Reason != "supertype cycle: p.X -> p.Y -> p.Z -> p.X" {
		t.Fatalf("err = %v", err)
	}
}

func TestUnresolvedAndDuplicate(t *testing.T) {
	u := &feed.Unit{Types: []feed.TypeDecl{
		{Kind: "class", Name: "p.A", Super: "Missing", File: "a.toml"},
		{Kind: "class", Name: "p.A", File: "b.toml"},
		{Kind: "class", Name: "p.G", TypeParams: []feed.TypeParam{{Name: "T"}}},
		{Kind: "class", Name: "p.H", Super: "p.G<java.lang.String, java.lang.String>"},
		{Kind: "class", Name: "p.K", Interfaces: []string{"p.G<int>"}},
	}}
	_, bag := newBuilder(t, u)
	codes := map[string]diag.Code{}
	for _, d := range bag.Items() {
		codes[d.Subject+"@"+d.File] = d.Code
	}
	if codes["p.A@a.toml"] != diag.DescUnresolvedType {
		t.Fatalf("missing unresolved super: %v", bag.Items())
	}
	if codes["p.A@b.toml"] != diag.DescDuplicateDecl {
		t.Fatalf("missing duplicate: %v", bag.Items())
	}
	if codes["p.H@"] != diag.DescUnresolvedType || codes["p.K@"] != diag.DescUnresolvedType {
		t.Fatalf("arity and primitive argument not reported: %v", bag.Items())
	}
}

func TestMethodErasure(t *testing.T) {
	u := genericsUnit()
	b, bag := newBuilder(t, u)
	ctx := context.Background()
	in := b.Interner()

	mustMethod := func(md feed.MethodDecl) types.MethodID {
		t.Helper()
		id, ok, err := b.Method(ctx, md)
		if err != nil || !ok {
			t.Fatalf("%s: ok=%v err=%v diags=%v", md.Subject(), ok, err, bag.Items())
		}
		return id
	}

	fun := mustMethod(feed.MethodDecl{Owner: "p.I", Name: "fun", Params: []string{"T"}})
	if got := in.ErasedSignature(fun); got != "fun(java.lang.Object)" {
		t.Fatalf("I.fun erased = %s", got)
	}
	bar := mustMethod(feed.MethodDecl{Owner: "p.A", Name: "bar", Params: []string{"T"}})
	if got := in.ErasedSignature(bar); got != "bar(java.lang.Number)" {
		t.Fatalf("A.bar erased = %s", got)
	}
	bbar := mustMethod(feed.MethodDecl{Owner: "p.B", Name: "bar", Params: []string{"java.lang.Integer"}})
	if got := in.ErasedSignature(bbar); got != "bar(java.lang.Integer)" {
		t.Fatalf("B.bar erased = %s", got)
	}
	if in.OverridesErased(bar, bbar) {
		t.Fatalf("A.bar and B.bar should need a bridge")
	}
	if !in.MustMethod(bbar).IsRaw() || in.IsParameterizedMethod(bbar) {
		t.Fatalf("B.bar should be raw and non-parameterized")
	}

	gen := mustMethod(feed.MethodDecl{
		Owner: "p.B", Name: "max",
		TypeParams: []feed.TypeParam{{Name: "U", Bound: "java.lang.Comparable<U>"}},
		Params:     []string{"U[]"}, Return: "U", Static: true,
	})
	m := in.MustMethod(gen)
	if !m.Parameterized || !m.IsStatic() {
		t.Fatalf("max = %+v", m)
	}
	if got := in.ErasedSignature(gen); got != "max(java.lang.Comparable[])" {
		t.Fatalf("max erased = %s", got)
	}
	if err := testkit.CheckInterner(in); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestMethodUnresolvedIsReported(t *testing.T) {
	b, bag := newBuilder(t, genericsUnit())
	ctx := context.Background()
	for _, md := range []feed.MethodDecl{
		{Owner: "p.Nope", Name: "m"},
		{Owner: "p.A", Name: "m", Params: []string{"U"}},
		{Owner: "p.A", Name: "m", Params: []string{"void"}},
	} {
		_, ok, err := b.Method(ctx, md)
		if err != nil || ok {
			t.Fatalf("%v: ok=%v err=%v", md.Params, ok, err)
		}
	}
	if bag.Len() != 3 {
		t.Fatalf("got %d diagnostics: %v", bag.Len(), bag.Items())
	}
}

func TestEnumDecl(t *testing.T) {
	u := &feed.Unit{Types: []feed.TypeDecl{
		{Kind: "enum", Name: "p.S", File: "s.toml", Enum: &feed.EnumDecl{
			Native: true, Namespace: "ns", HasCustomValue: true,
			Constants: []string{"A", "B"},
			Members:   []feed.MemberDecl{{Name: "value", Type: "java.lang.String"}},
		}},
		{Kind: "class", Name: "p.C"},
	}}
	b, _ := newBuilder(t, u)
	d, ok, err := b.Enum("p.S")
	if err != nil || !ok {
		t.Fatalf("enum: ok=%v err=%v", ok, err)
	}
	if d.Mapping() != "ns.S" || len(d.Members) != 1 || d.Members[0].Type != b.Interner().Builtins().String {
		t.Fatalf("decl = %+v", d)
	}
	if _, ok, _ := b.Enum("p.C"); ok {
		t.Fatalf("class built as enum")
	}
	if got := b.Enums(); len(got) != 1 || got[0] != "p.S" {
		t.Fatalf("enums = %v", got)
	}
}
