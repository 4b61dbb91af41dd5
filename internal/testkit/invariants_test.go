package testkit

import (
	"strings"
	"testing"

	"lowerc/internal/types"
)

func TestCheckInternerAcceptsDerivedMethods(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tv := in.MustIntern(types.MakeTypeVar("p.Box", "T"))
	box := in.MustIntern(types.MakeClass("p.Box", tv))

	get, err := in.NewMethod(types.MethodSpec{Owner: box, Name: "get", Return: tv})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	set, err := in.NewMethod(types.MethodSpec{Owner: box, Name: "set", Params: []types.TypeID{tv}, Return: b.Void})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := in.AppendParameters(set, []types.TypeID{b.Int, tv}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := in.AppendParameters(get, nil); err != nil {
		t.Fatalf("append nothing: %v", err)
	}
	if err := CheckInterner(in); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestCheckInternerReportsUnsyncedErasure(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tv := in.MustIntern(types.MakeTypeVar("p.Box", "T"))
	box := in.MustIntern(types.MakeClass("p.Box", tv))
	raw := in.RawOf(box)

	// an erasure taking String where the raw form of T is Object
	stale, err := in.InternMethod(types.MethodSpec{Owner: raw, Name: "set", Params: []types.TypeID{b.String}, Return: b.Void})
	if err != nil {
		t.Fatalf("stale erasure: %v", err)
	}
	if _, err := in.InternMethod(types.MethodSpec{
		Owner: box, Name: "set", Params: []types.TypeID{tv}, Return: b.Void,
		Parameterized: true, Erasure: stale,
	}); err != nil {
		t.Fatalf("method: %v", err)
	}

	err = CheckInterner(in)
	if err == nil || !strings.Contains(err.Error(), "erasure parameter 0 is java.lang.String, want java.lang.Object") {
		t.Fatalf("err = %v", err)
	}
}
