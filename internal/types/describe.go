package types

import (
	"strings"
)

// Describe renders a type the way it is spelled in source: java.util.List<T>,
// int[], T.
func (in *Interner) Describe(id TypeID) string {
	var b strings.Builder
	in.describeInto(&b, id)
	return b.String()
}

func (in *Interner) describeInto(b *strings.Builder, id TypeID) {
	t, ok := in.Lookup(id)
	if !ok {
		b.WriteString("<invalid>")
		return
	}
	switch t.Kind {
	case KindArray:
		in.describeInto(b, t.Elem)
		b.WriteString("[]")
		return
	default:
		b.WriteString(t.Name)
	}
	if len(t.Args) == 0 {
		return
	}
	b.WriteByte('<')
	for i, arg := range t.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		in.describeInto(b, arg)
	}
	b.WriteByte('>')
}

// DescribeMethod renders a method as Owner.name<T>(params) -> ret.
func (in *Interner) DescribeMethod(id MethodID) string {
	m, ok := in.Method(id)
	if !ok {
		return "<invalid>"
	}
	var b strings.Builder
	if m.IsStatic() {
		b.WriteString("static ")
	}
	if m.IsNative() {
		b.WriteString("native ")
	}
	in.describeInto(&b, m.Owner)
	b.WriteByte('.')
	b.WriteString(m.Name)
	if len(m.TypeParams) > 0 {
		b.WriteByte('<')
		for i, tp := range m.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			in.describeInto(&b, tp)
		}
		b.WriteByte('>')
	}
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		in.describeInto(&b, p)
	}
	b.WriteByte(')')
	if !m.IsConstructor() {
		b.WriteString(" -> ")
		in.describeInto(&b, m.Return)
	}
	return b.String()
}
