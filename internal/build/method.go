package build

import (
	"context"
	"strings"

	"lowerc/internal/enums"
	"lowerc/internal/feed"
	"lowerc/internal/trace"
	"lowerc/internal/types"
)

// Owner returns the descriptor methods of a declared type hang off: the
// type applied to its own type variables, or the raw type when it has none.
func (b *Builder) Owner(name string) (types.TypeID, bool) {
	td, ok := b.decls[name]
	if !ok {
		return types.NoTypeID, false
	}
	if len(td.TypeParams) == 0 {
		return b.ids[name], true
	}
	sc := b.vars[name]
	args := make([]types.TypeID, len(td.TypeParams))
	for i, tp := range td.TypeParams {
		args[i] = sc[tp.Name]
	}
	id, err := b.in.Intern(types.Spec{Kind: kindOf(td.Kind), Name: name, Args: args})
	if err != nil {
		return types.NoTypeID, false
	}
	return id, true
}

// Method interns md. ok is false when a reference did not resolve; the
// problem has been reported. A non-nil error is fatal.
func (b *Builder) Method(ctx context.Context, md feed.MethodDecl) (id types.MethodID, ok bool, err error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDecl, "method:"+md.Subject(), trace.SpanFromContext(ctx))
	defer span.End("")

	owner, found := b.Owner(md.Owner)
	if !found {
		return types.NoMethodID, false, b.report(unresolvedf(md.Owner, "method owner is not declared"), md.Subject(), md.File)
	}

	// Overloads declare distinct type variables, so the textual signature
	// is part of the declaring owner.
	declarer := md.Subject() + "(" + strings.Join(md.Params, ",") + ")"
	msc := make(scope, len(md.TypeParams))
	tparams := make([]types.TypeID, len(md.TypeParams))
	for i, tp := range md.TypeParams {
		tv, err := b.in.Intern(types.MakeTypeVar(declarer, tp.Name))
		if err != nil {
			return types.NoMethodID, false, err
		}
		msc[tp.Name] = tv
		tparams[i] = tv
	}
	osc := b.vars[md.Owner]
	for _, tp := range md.TypeParams {
		if tp.Bound == "" {
			continue
		}
		bound, err := b.resolveString(tp.Bound, msc, osc)
		if err != nil {
			return types.NoMethodID, false, b.report(err, md.Subject(), md.File)
		}
		if err := b.in.DeclareBound(msc[tp.Name], bound); err != nil {
			return types.NoMethodID, false, err
		}
	}

	params := make([]types.TypeID, len(md.Params))
	for i, p := range md.Params {
		if params[i], err = b.resolveString(p, msc, osc); err != nil {
			return types.NoMethodID, false, b.report(err, md.Subject(), md.File)
		}
	}
	ret, err := b.resolveReturn(md.ReturnType(), msc, osc)
	if err != nil {
		return types.NoMethodID, false, b.report(err, md.Subject(), md.File)
	}
	vis, err := types.ParseVisibility(md.Visibility)
	if err != nil {
		return types.NoMethodID, false, b.report(err, md.Subject(), md.File)
	}

	var flags types.MethodFlags
	if md.Static {
		flags |= types.MethodFlagStatic
	}
	if md.Native {
		flags |= types.MethodFlagNative
	}
	if md.Constructor {
		flags |= types.MethodFlagConstructor
	}
	if td := b.decls[md.Owner]; len(td.TypeParams) == 0 && len(md.TypeParams) == 0 {
		flags |= types.MethodFlagRaw
	}

	id, err = b.in.NewMethod(types.MethodSpec{
		Owner:      owner,
		Name:       md.Name,
		Params:     params,
		Return:     ret,
		TypeParams: tparams,
		Flags:      flags,
		Visibility: vis,
	})
	if err != nil {
		return types.NoMethodID, false, err
	}
	return id, true, nil
}

// Enum builds the classifier input for the enum declaration name. ok is
// false when the name is not a declared enum or a member type did not
// resolve.
func (b *Builder) Enum(name string) (d enums.Decl, ok bool, err error) {
	td, found := b.decls[name]
	if !found || td.Kind != "enum" || td.Enum == nil {
		return enums.Decl{}, false, nil
	}
	e := td.Enum
	d = enums.Decl{
		Type:           b.ids[name],
		Name:           name,
		File:           td.File,
		Native:         e.Native,
		Namespace:      e.Namespace,
		JSName:         e.JSName,
		HasCustomValue: e.HasCustomValue,
		Constants:      append([]string(nil), e.Constants...),
	}
	for _, m := range e.Members {
		t, err := b.resolveString(m.Type, b.vars[name])
		if err != nil {
			return enums.Decl{}, false, b.report(err, name+"."+m.Name, td.File)
		}
		d.Members = append(d.Members, enums.Member{
			Name:        m.Name,
			Type:        t,
			Static:      m.Static,
			CustomValue: m.CustomValue,
		})
	}
	return d, true, nil
}

// Enums lists declared enum names in feed order.
func (b *Builder) Enums() []string {
	var out []string
	for _, name := range b.order {
		if b.decls[name].Kind == "enum" {
			out = append(out, name)
		}
	}
	return out
}
