// Package testkit holds structural checks over a populated interner, shared
// by the tests of the packages that fill one.
package testkit

import (
	"errors"
	"fmt"

	"lowerc/internal/types"
)

// CheckInterner verifies the descriptor invariants of in:
//  1. every type is found again under its own key
//  2. nominal types have a raw form that is argument-free and its own raw form
//  3. a method that is not parameterized is its own erasure
//  4. a parameterized method's erasure has the same name, is its own
//     erasure, and takes the raw forms of the method's parameters
//  5. enum tags sit on enum descriptors and carry a valid variant
//
// All violations are returned joined.
func CheckInterner(in *types.Interner) error {
	if in == nil {
		return errors.New("nil interner")
	}
	var errs []error
	in.EachType(func(t types.Type) bool {
		errs = append(errs, checkType(in, t)...)
		return true
	})
	in.EachMethod(func(m types.Method) bool {
		errs = append(errs, checkMethod(in, m)...)
		return true
	})
	return errors.Join(errs...)
}

func checkType(in *types.Interner, t types.Type) []error {
	var errs []error
	spec := types.Spec{Kind: t.Kind, Name: t.Name, Owner: t.Owner, Args: t.Args, Elem: t.Elem}
	if id, ok := in.Find(spec); !ok || id != t.ID {
		errs = append(errs, fmt.Errorf("type #%d %s: key finds #%d (found=%v)", t.ID, t.Name, id, ok))
	}
	if t.Kind.IsNominal() {
		raw, ok := in.Lookup(t.Raw)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("type #%d %s: no raw form", t.ID, t.Name))
		case len(raw.Args) > 0 || raw.Raw != raw.ID:
			errs = append(errs, fmt.Errorf("type #%d %s: raw form #%d is not raw", t.ID, t.Name, raw.ID))
		case len(t.Args) == 0 && t.Raw != t.ID:
			errs = append(errs, fmt.Errorf("type #%d %s: raw type points at #%d", t.ID, t.Name, t.Raw))
		}
	}
	if info, ok := in.EnumInfo(t.ID); ok {
		if t.Kind != types.KindEnum {
			errs = append(errs, fmt.Errorf("type #%d %s: enum tag on %s", t.ID, t.Name, t.Kind))
		}
		if !info.Variant.Valid() {
			errs = append(errs, fmt.Errorf("type #%d %s: invalid variant %s", t.ID, t.Name, info.Variant))
		}
	}
	return errs
}

func checkMethod(in *types.Interner, m types.Method) []error {
	subject := in.DescribeMethod(m.ID)
	if !m.Parameterized {
		if m.Erasure != m.ID {
			return []error{fmt.Errorf("method #%d %s: not parameterized but erases to #%d", m.ID, subject, m.Erasure)}
		}
		return nil
	}
	e, ok := in.Method(m.Erasure)
	if !ok {
		return []error{fmt.Errorf("method #%d %s: missing erasure #%d", m.ID, subject, m.Erasure)}
	}
	var errs []error
	if e.Name != m.Name {
		errs = append(errs, fmt.Errorf("method #%d %s: erasure is named %s", m.ID, subject, e.Name))
	}
	if e.Parameterized || e.Erasure != e.ID {
		errs = append(errs, fmt.Errorf("method #%d %s: erasure #%d is not its own erasure", m.ID, subject, e.ID))
	}
	if len(e.Params) != len(m.Params) {
		return append(errs, fmt.Errorf("method #%d %s: erasure takes %d parameters, method %d", m.ID, subject, len(e.Params), len(m.Params)))
	}
	for i, p := range m.Params {
		if want := in.RawOf(p); e.Params[i] != want {
			errs = append(errs, fmt.Errorf("method #%d %s: erasure parameter %d is %s, want %s",
				m.ID, subject, i, in.Describe(e.Params[i]), in.Describe(want)))
		}
	}
	return errs
}
