package build

import (
	"strings"

	"lowerc/internal/feed"
	"lowerc/internal/types"
)

// scope maps type variable names to their descriptors.
type scope map[string]types.TypeID

func (b *Builder) primitive(name string) (types.TypeID, bool) {
	bt := b.in.Builtins()
	switch name {
	case "boolean":
		return bt.Boolean, true
	case "byte":
		return bt.Byte, true
	case "short":
		return bt.Short, true
	case "char":
		return bt.Char, true
	case "int":
		return bt.Int, true
	case "long":
		return bt.Long, true
	case "float":
		return bt.Float, true
	case "double":
		return bt.Double, true
	}
	return types.NoTypeID, false
}

func (b *Builder) resolveString(s string, scopes ...scope) (types.TypeID, error) {
	ref, err := feed.ParseTypeRef(s)
	if err != nil {
		return types.NoTypeID, err
	}
	return b.resolve(ref, scopes...)
}

// resolveReturn is resolveString that also accepts void.
func (b *Builder) resolveReturn(s string, scopes ...scope) (types.TypeID, error) {
	if strings.TrimSpace(s) == "void" {
		return b.in.Builtins().Void, nil
	}
	return b.resolveString(s, scopes...)
}

// resolve interns ref. Scopes are searched in order for type variables.
// Qualified names that are not declared in the unit are library classes.
func (b *Builder) resolve(ref feed.TypeRef, scopes ...scope) (types.TypeID, error) {
	if ref.Dims > 0 {
		elem, err := b.resolve(ref.Elem(), scopes...)
		if err != nil {
			return types.NoTypeID, err
		}
		return b.in.Intern(types.MakeArray(elem))
	}
	if len(ref.Args) == 0 {
		for _, sc := range scopes {
			if id, ok := sc[ref.Name]; ok {
				return id, nil
			}
		}
		if id, ok := b.primitive(ref.Name); ok {
			return id, nil
		}
	}
	if ref.Name == "void" {
		return types.NoTypeID, unresolvedf(ref.String(), "void is not a value type")
	}

	kind, err := b.nominalKind(ref)
	if err != nil {
		return types.NoTypeID, err
	}
	args := make([]types.TypeID, len(ref.Args))
	for i, a := range ref.Args {
		if args[i], err = b.resolve(a, scopes...); err != nil {
			return types.NoTypeID, err
		}
		if t, _ := b.in.Lookup(args[i]); t.Kind == types.KindPrimitive {
			return types.NoTypeID, unresolvedf(ref.String(), "primitive %s used as a type argument", t.Name)
		}
	}
	return b.in.Intern(types.Spec{Kind: kind, Name: ref.Name, Args: args})
}

func (b *Builder) nominalKind(ref feed.TypeRef) (types.Kind, error) {
	if td, ok := b.decls[ref.Name]; ok {
		if n := len(td.TypeParams); len(ref.Args) > 0 && len(ref.Args) != n {
			return types.KindInvalid, unresolvedf(ref.String(), "%s expects %d type arguments, got %d", ref.Name, n, len(ref.Args))
		}
		return kindOf(td.Kind), nil
	}
	if k, ok := b.in.NominalKind(ref.Name); ok {
		return k, nil
	}
	if !strings.Contains(ref.Name, ".") {
		return types.KindInvalid, unresolvedf(ref.String(), "not a type variable, primitive or declared type")
	}
	return types.KindClass, nil
}

// ResolveType resolves a type reference as seen from inside owner, whose
// type variables are in scope. An empty owner resolves at top level.
func (b *Builder) ResolveType(s, owner string) (types.TypeID, error) {
	return b.resolveString(s, b.vars[owner])
}
