package types

import (
	"fmt"
	"strings"

	"lowerc/internal/intern"
)

// MethodID uniquely identifies a method descriptor inside the interner.
type MethodID uint32

// NoMethodID marks the absence of a method. As an erasure link it means
// "the method is its own erasure".
const NoMethodID MethodID = 0

// IsValid reports whether id is not the sentinel.
func (id MethodID) IsValid() bool { return id != NoMethodID }

// Visibility is the declared access level.
type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPackage
	VisibilityPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityProtected:
		return "protected"
	case VisibilityPackage:
		return "package"
	case VisibilityPrivate:
		return "private"
	default:
		return fmt.Sprintf("Visibility(%d)", v)
	}
}

// ParseVisibility converts a textual visibility; the empty string is public.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "public":
		return VisibilityPublic, nil
	case "protected":
		return VisibilityProtected, nil
	case "package":
		return VisibilityPackage, nil
	case "private":
		return VisibilityPrivate, nil
	default:
		return VisibilityPublic, fmt.Errorf("invalid visibility: %q (expected: public|protected|package|private)", s)
	}
}

// MethodFlags annotate method modifiers.
type MethodFlags uint8

const (
	MethodFlagNone   MethodFlags = 0
	MethodFlagStatic MethodFlags = 1 << iota
	MethodFlagNative
	MethodFlagConstructor
	MethodFlagRaw // declared in a raw, non-generic context
)

// Has reports whether all bits of f are set.
func (m MethodFlags) Has(f MethodFlags) bool { return m&f == f }

// Method is the interned descriptor of a method signature.
type Method struct {
	ID            MethodID
	Owner         TypeID
	Name          string
	Params        []TypeID
	Return        TypeID
	TypeParams    []TypeID
	Flags         MethodFlags
	Visibility    Visibility
	Parameterized bool
	Erasure       MethodID // equals ID when the method is its own erasure
}

// IsStatic reports the static modifier.
func (m Method) IsStatic() bool { return m.Flags.Has(MethodFlagStatic) }

// IsNative reports the native modifier.
func (m Method) IsNative() bool { return m.Flags.Has(MethodFlagNative) }

// IsConstructor reports whether the method is a constructor.
func (m Method) IsConstructor() bool { return m.Flags.Has(MethodFlagConstructor) }

// IsRaw reports whether the method was declared in a raw context.
func (m Method) IsRaw() bool { return m.Flags.Has(MethodFlagRaw) }

// MethodSpec carries every field of a method descriptor. Erasure is
// NoMethodID for methods that are their own erasure.
type MethodSpec struct {
	Owner         TypeID
	Name          string
	Params        []TypeID
	Return        TypeID
	TypeParams    []TypeID
	Flags         MethodFlags
	Visibility    Visibility
	Parameterized bool
	Erasure       MethodID
}

// Spec returns the fields of m as a MethodSpec, with the erasure link
// expressed the way InternMethod expects it.
func (m Method) Spec() MethodSpec {
	erasure := m.Erasure
	if erasure == m.ID {
		erasure = NoMethodID
	}
	return MethodSpec{
		Owner:         m.Owner,
		Name:          m.Name,
		Params:        cloneTypeArgs(m.Params),
		Return:        m.Return,
		TypeParams:    cloneTypeArgs(m.TypeParams),
		Flags:         m.Flags,
		Visibility:    m.Visibility,
		Parameterized: m.Parameterized,
		Erasure:       erasure,
	}
}

// InternMethod canonicalises a fully specified method descriptor. It is the
// low-level constructor; NewMethod derives the erasure for source methods.
func (in *Interner) InternMethod(spec MethodSpec) (MethodID, error) {
	spec.Name = canonicalName(spec.Name)
	if err := in.validateMethod(spec); err != nil {
		return NoMethodID, err
	}
	key := methodKey{
		Owner:         spec.Owner,
		Name:          spec.Name,
		Params:        encodeIDs(spec.Params),
		Return:        spec.Return,
		TypeParams:    encodeIDs(spec.TypeParams),
		Flags:         spec.Flags,
		Visibility:    spec.Visibility,
		Parameterized: spec.Parameterized,
		Erasure:       spec.Erasure,
	}
	id, _, err := in.methods.Intern(key, func(slot intern.ID) (Method, error) {
		self := MethodID(slot)
		erasure := spec.Erasure
		if erasure == NoMethodID {
			erasure = self
		}
		return Method{
			ID:            self,
			Owner:         spec.Owner,
			Name:          spec.Name,
			Params:        cloneTypeArgs(spec.Params),
			Return:        spec.Return,
			TypeParams:    cloneTypeArgs(spec.TypeParams),
			Flags:         spec.Flags,
			Visibility:    spec.Visibility,
			Parameterized: spec.Parameterized,
			Erasure:       erasure,
		}, nil
	})
	if err != nil {
		return NoMethodID, err
	}
	return MethodID(id), nil
}

func (in *Interner) validateMethod(spec MethodSpec) error {
	subject := spec.Name
	owner, ok := in.Lookup(spec.Owner)
	if !ok || !owner.Kind.IsNominal() {
		return malformed(subject, "method owner %d is not a declared type", spec.Owner)
	}
	subject = owner.Name + "." + spec.Name
	if spec.Name == "" {
		return malformed(owner.Name, "method without a name")
	}
	for i, p := range spec.Params {
		if err := in.validateArg(subject, p); err != nil {
			return malformed(subject, "parameter %d: %v", i, err)
		}
	}
	if _, ok := in.Lookup(spec.Return); !ok {
		return malformed(subject, "unresolved return type %d", spec.Return)
	}
	for i, tp := range spec.TypeParams {
		t, ok := in.Lookup(tp)
		if !ok || t.Kind != KindTypeVar {
			return malformed(subject, "type parameter %d is not a type variable", i)
		}
	}
	if !spec.Parameterized {
		if spec.Erasure != NoMethodID {
			return malformed(subject, "non-parameterized method linked to a separate erasure")
		}
		return nil
	}
	erasure, ok := in.Method(spec.Erasure)
	if !ok {
		return malformed(subject, "parameterized method without an erasure")
	}
	if len(erasure.Params) != len(spec.Params) {
		return malformed(subject, "erasure has %d parameters, method has %d", len(erasure.Params), len(spec.Params))
	}
	if erasure.Parameterized {
		return malformed(subject, "erasure is itself parameterized")
	}
	return nil
}

// NewMethod interns a method as declared in source. Parameterized is forced
// on when the signature mentions type variables or parameterized types, and
// the erasure is derived from the raw forms of the signature.
func (in *Interner) NewMethod(spec MethodSpec) (MethodID, error) {
	spec.Erasure = NoMethodID
	if !spec.Parameterized {
		spec.Parameterized = in.signatureIsGeneric(spec)
	}
	if !spec.Parameterized {
		return in.InternMethod(spec)
	}

	// Validate the declared form first so a bad signature never leaves a
	// dangling erasure behind.
	bare := spec
	bare.Parameterized = false
	if err := in.validateMethod(bare); err != nil {
		return NoMethodID, err
	}

	rawParams := make([]TypeID, len(spec.Params))
	for i, p := range spec.Params {
		rawParams[i] = in.RawOf(p)
	}
	erasure, err := in.InternMethod(MethodSpec{
		Owner:      in.RawOf(spec.Owner),
		Name:       spec.Name,
		Params:     rawParams,
		Return:     in.RawOf(spec.Return),
		Flags:      spec.Flags,
		Visibility: spec.Visibility,
	})
	if err != nil {
		return NoMethodID, err
	}
	spec.Erasure = erasure
	return in.InternMethod(spec)
}

func (in *Interner) signatureIsGeneric(spec MethodSpec) bool {
	if len(spec.TypeParams) > 0 {
		return true
	}
	for _, p := range append([]TypeID{spec.Return}, spec.Params...) {
		if in.mentionsGenerics(p) {
			return true
		}
	}
	return false
}

func (in *Interner) mentionsGenerics(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindTypeVar:
		return true
	case KindArray:
		return in.mentionsGenerics(t.Elem)
	default:
		return len(t.Args) > 0
	}
}

// Method returns the descriptor for a MethodID.
func (in *Interner) Method(id MethodID) (Method, bool) {
	if id == NoMethodID {
		return Method{}, false
	}
	return in.methods.Get(intern.ID(id))
}

// MustMethod panics when id is invalid.
func (in *Interner) MustMethod(id MethodID) Method {
	m, ok := in.Method(id)
	if !ok {
		panic("types: invalid MethodID")
	}
	return m
}

// MethodCount reports the number of interned method descriptors.
func (in *Interner) MethodCount() int { return in.methods.Len() }

// EachMethod visits method descriptors in interning order.
func (in *Interner) EachMethod(fn func(Method) bool) {
	in.methods.Each(func(_ intern.ID, m Method) bool { return fn(m) })
}

// IsParameterizedMethod reports the stored parameterized flag.
func (in *Interner) IsParameterizedMethod(id MethodID) bool {
	m, ok := in.Method(id)
	return ok && m.Parameterized
}

// ErasureOf returns the erasure descriptor of id; itself when not parameterized.
func (in *Interner) ErasureOf(id MethodID) MethodID {
	m, ok := in.Method(id)
	if !ok {
		return NoMethodID
	}
	return m.Erasure
}

// ErasedSignature renders name(rawParam,...) used for override matching.
func (in *Interner) ErasedSignature(id MethodID) string {
	m, ok := in.Method(in.ErasureOf(id))
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(in.Describe(in.RawOf(p)))
	}
	b.WriteByte(')')
	return b.String()
}

// OverridesErased reports whether a and b share name and erased parameters,
// the condition under which dispatch treats them as the same slot.
func (in *Interner) OverridesErased(a, b MethodID) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	return in.ErasedSignature(a) == in.ErasedSignature(b)
}
