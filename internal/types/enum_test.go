package types

import (
	"errors"
	"testing"
)

func TestAllEnumVariantsAreValidAndDistinct(t *testing.T) {
	seen := make(map[EnumVariant]bool)
	for _, v := range AllEnumVariants() {
		if !v.Valid() {
			t.Fatalf("%s reported invalid", v)
		}
		if seen[v] {
			t.Fatalf("duplicate variant %s", v)
		}
		seen[v] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 variants, got %d", len(seen))
	}
	if (EnumVariant{Rep: RepBoxedOrdinal, Kind: ValueString}).Valid() {
		t.Fatalf("boxed ordinal cannot carry a value kind")
	}
	if NativeCustomValue(ValueNone).Valid() {
		t.Fatalf("custom value variant needs a kind")
	}
}

func TestVariantStrings(t *testing.T) {
	if got := NativeCustomValue(ValueString).String(); got != "NativeCustomValue(String)" {
		t.Fatalf("got %q", got)
	}
	if got := BoxedOrdinal.String(); got != "BoxedOrdinal" {
		t.Fatalf("got %q", got)
	}
}

func TestTagEnumIsFixed(t *testing.T) {
	in := NewInterner()
	e := in.MustIntern(MakeEnum("pkg.E"))
	info := EnumInfo{Variant: BoxedOrdinal, Constants: []string{"A", "B"}}
	if err := in.TagEnum(e, info); err != nil {
		t.Fatalf("tag: %v", err)
	}
	if err := in.TagEnum(e, info); err != nil {
		t.Fatalf("identical retag must be accepted: %v", err)
	}
	if err := in.TagEnum(e, EnumInfo{Variant: NativeValueless}); !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("changing the variant must be malformed, got %v", err)
	}
	got, ok := in.EnumInfo(e)
	if !ok || got.Variant != BoxedOrdinal || len(got.Constants) != 2 {
		t.Fatalf("unexpected info %+v", got)
	}
	if err := in.TagEnum(in.Builtins().String, info); !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("tagging a class must be malformed, got %v", err)
	}
}
