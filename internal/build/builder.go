// Package build turns validated feed records into interned descriptors.
//
// Type declarations are resolved sequentially so descriptor IDs are stable
// across runs. Once Types has returned, Method and Enum only read the
// builder's tables and may be called from many goroutines.
package build

import (
	"context"
	"errors"
	"fmt"

	"lowerc/internal/diag"
	"lowerc/internal/feed"
	"lowerc/internal/trace"
	"lowerc/internal/types"
)

// Builder resolves feed records against one interner.
type Builder struct {
	in *types.Interner
	r  diag.Reporter

	decls map[string]*feed.TypeDecl
	order []string
	ids   map[string]types.TypeID
	// vars maps a declaring type to its type variables by name.
	vars map[string]scope
}

func New(in *types.Interner, r diag.Reporter) *Builder {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Builder{
		in:    in,
		r:     r,
		decls: make(map[string]*feed.TypeDecl),
		ids:   make(map[string]types.TypeID),
		vars:  make(map[string]scope),
	}
}

// Interner returns the interner the builder writes to.
func (b *Builder) Interner() *types.Interner { return b.in }

// Types interns every type declaration of u, their type variables and
// bounds, and declares their hierarchies. Unresolved references are
// reported and skip the affected declaration; malformed keys, including
// supertype cycles, are returned and abort the unit.
func (b *Builder) Types(ctx context.Context, u *feed.Unit) error {
	for i := range u.Types {
		td := &u.Types[i]
		if prev, dup := b.decls[td.Name]; dup {
			diag.ReportError(b.r, diag.DescDuplicateDecl, td.Name, "type declared more than once").
				InFile(td.File).
				WithNote(td.Name, "first declared in "+prev.File).
				Emit()
			continue
		}
		b.decls[td.Name] = td
		b.order = append(b.order, td.Name)
	}

	for _, name := range b.order {
		td := b.decls[name]
		id, err := b.in.Intern(types.Spec{Kind: kindOf(td.Kind), Name: td.Name})
		if err != nil {
			return err
		}
		b.ids[name] = id
		sc := make(scope, len(td.TypeParams))
		for _, tp := range td.TypeParams {
			tv, err := b.in.Intern(types.MakeTypeVar(td.Name, tp.Name))
			if err != nil {
				return err
			}
			sc[tp.Name] = tv
		}
		b.vars[name] = sc
	}

	if err := b.checkCycles(); err != nil {
		return err
	}

	tracer := trace.FromContext(ctx)
	parent := trace.SpanFromContext(ctx)
	for _, name := range b.order {
		span := trace.Begin(tracer, trace.ScopeDecl, "type:"+name, parent)
		err := b.declare(b.decls[name])
		span.End("")
		if err != nil {
			return err
		}
	}
	return nil
}

// declare resolves bounds and the hierarchy of td.
func (b *Builder) declare(td *feed.TypeDecl) error {
	sc := b.vars[td.Name]
	for _, tp := range td.TypeParams {
		if tp.Bound == "" {
			continue
		}
		bound, err := b.resolveString(tp.Bound, sc)
		if err != nil {
			return b.report(err, td.Name, td.File)
		}
		if err := b.in.DeclareBound(sc[tp.Name], bound); err != nil {
			return err
		}
	}

	var h types.Hierarchy
	if td.Enclosing != "" {
		id, ok := b.ids[td.Enclosing]
		if !ok {
			return b.report(unresolvedf(td.Enclosing, "enclosing type is not declared"), td.Name, td.File)
		}
		h.Enclosing = id
	}
	if td.Super != "" {
		id, err := b.resolveString(td.Super, sc)
		if err != nil {
			return b.report(err, td.Name, td.File)
		}
		h.Super = id
	} else {
		h.Super = b.defaultSuper(td)
	}
	for _, ref := range td.Interfaces {
		id, err := b.resolveString(ref, sc)
		if err != nil {
			return b.report(err, td.Name, td.File)
		}
		h.Interfaces = append(h.Interfaces, id)
	}
	return b.in.DeclareHierarchy(b.ids[td.Name], h)
}

func (b *Builder) defaultSuper(td *feed.TypeDecl) types.TypeID {
	bt := b.in.Builtins()
	switch {
	case td.Kind == "enum":
		return bt.Enum
	case td.Kind == "class" && td.Name != types.NameObject:
		return bt.Object
	default:
		return types.NoTypeID
	}
}

// report turns a resolution failure into a diagnostic. Malformed keys are
// passed back up as fatal.
func (b *Builder) report(err error, subject, file string) error {
	var mk *types.MalformedKeyError
	if errors.As(err, &mk) {
		return err
	}
	code := diag.DescUnresolvedType
	if errors.Is(err, feed.ErrBadTypeRef) {
		code = diag.FeedBadTypeRef
	}
	diag.ReportError(b.r, code, subject, err.Error()).InFile(file).Emit()
	return nil
}

// Declared returns the raw descriptor of a declared type.
func (b *Builder) Declared(name string) (types.TypeID, bool) {
	id, ok := b.ids[name]
	return id, ok
}

// Decl returns the feed record of a declared type.
func (b *Builder) Decl(name string) (*feed.TypeDecl, bool) {
	td, ok := b.decls[name]
	return td, ok
}

// Names lists declared types in feed order, duplicates dropped.
func (b *Builder) Names() []string {
	return append([]string(nil), b.order...)
}

func kindOf(k string) types.Kind {
	switch k {
	case "interface":
		return types.KindInterface
	case "enum":
		return types.KindEnum
	default:
		return types.KindClass
	}
}

// UnresolvedError is a type reference that names nothing in scope.
type UnresolvedError struct {
	Ref    string
	Reason string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved type %q: %s", e.Ref, e.Reason)
}

func unresolvedf(ref, format string, args ...any) error {
	return &UnresolvedError{Ref: ref, Reason: fmt.Sprintf(format, args...)}
}
