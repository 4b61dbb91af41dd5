package types

import (
	"sync"

	"lowerc/internal/intern"
)

// Well-known qualified names.
const (
	NameObject       = "java.lang.Object"
	NameString       = "java.lang.String"
	NameNumber       = "java.lang.Number"
	NameBoolean      = "java.lang.Boolean"
	NameByte         = "java.lang.Byte"
	NameShort        = "java.lang.Short"
	NameInteger      = "java.lang.Integer"
	NameLong         = "java.lang.Long"
	NameFloat        = "java.lang.Float"
	NameDouble       = "java.lang.Double"
	NameCharacter    = "java.lang.Character"
	NameEnum         = "java.lang.Enum"
	NameComparable   = "java.lang.Comparable"
	NameSerializable = "java.io.Serializable"
)

// Builtins stores TypeIDs for the types every unit relies on.
type Builtins struct {
	Void    TypeID
	Boolean TypeID
	Byte    TypeID
	Short   TypeID
	Char    TypeID
	Int     TypeID
	Long    TypeID
	Float   TypeID
	Double  TypeID

	Object       TypeID
	String       TypeID
	Number       TypeID
	BooleanBox   TypeID
	ByteBox      TypeID
	ShortBox     TypeID
	IntegerBox   TypeID
	LongBox      TypeID
	FloatBox     TypeID
	DoubleBox    TypeID
	CharBox      TypeID
	Enum         TypeID
	Comparable   TypeID
	Serializable TypeID
}

// Hierarchy is declared once per nominal type after interning, which lets
// self-referential declarations (class Foo implements Comparable<Foo>) point
// back at an already interned placeholder.
type Hierarchy struct {
	Enclosing  TypeID // weak back-reference, never owned
	Super      TypeID
	Interfaces []TypeID
}

// Interner provides stable IDs for type and method descriptors. It is safe
// for concurrent use.
type Interner struct {
	types    *intern.Table[typeKey, Type]
	methods  *intern.Table[methodKey, Method]
	builtins Builtins

	mu        sync.RWMutex
	nominal   map[string]Kind
	hierarchy map[TypeID]Hierarchy
	bounds    map[TypeID]TypeID
	enums     map[TypeID]EnumInfo
}

// NewInterner constructs an interner seeded with built-in types.
func NewInterner() *Interner {
	in := &Interner{}
	in.init()
	return in
}

func (in *Interner) init() {
	in.types = intern.New[typeKey, Type](256)
	in.methods = intern.New[methodKey, Method](256)
	in.nominal = make(map[string]Kind, 64)
	in.hierarchy = make(map[TypeID]Hierarchy, 64)
	in.bounds = make(map[TypeID]TypeID)
	in.enums = make(map[TypeID]EnumInfo)

	b := &in.builtins
	b.Void = in.MustIntern(Spec{Kind: KindVoid, Name: "void"})
	b.Boolean = in.MustIntern(MakePrimitive("boolean"))
	b.Byte = in.MustIntern(MakePrimitive("byte"))
	b.Short = in.MustIntern(MakePrimitive("short"))
	b.Char = in.MustIntern(MakePrimitive("char"))
	b.Int = in.MustIntern(MakePrimitive("int"))
	b.Long = in.MustIntern(MakePrimitive("long"))
	b.Float = in.MustIntern(MakePrimitive("float"))
	b.Double = in.MustIntern(MakePrimitive("double"))

	b.Object = in.MustIntern(MakeClass(NameObject))
	b.String = in.MustIntern(MakeClass(NameString))
	b.Number = in.MustIntern(MakeClass(NameNumber))
	b.BooleanBox = in.MustIntern(MakeClass(NameBoolean))
	b.ByteBox = in.MustIntern(MakeClass(NameByte))
	b.ShortBox = in.MustIntern(MakeClass(NameShort))
	b.IntegerBox = in.MustIntern(MakeClass(NameInteger))
	b.LongBox = in.MustIntern(MakeClass(NameLong))
	b.FloatBox = in.MustIntern(MakeClass(NameFloat))
	b.DoubleBox = in.MustIntern(MakeClass(NameDouble))
	b.CharBox = in.MustIntern(MakeClass(NameCharacter))
	b.Enum = in.MustIntern(MakeClass(NameEnum))
	b.Comparable = in.MustIntern(MakeInterface(NameComparable))
	b.Serializable = in.MustIntern(MakeInterface(NameSerializable))
}

// Builtins returns TypeIDs for the seeded types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Reset drops every descriptor and reseeds builtins. It must not run
// concurrently with other calls, and IDs from before the Reset are invalid.
func (in *Interner) Reset() {
	in.init()
}

// Intern returns the canonical TypeID for spec, creating it on first request.
func (in *Interner) Intern(spec Spec) (TypeID, error) {
	spec.Name = canonicalName(spec.Name)
	spec.Owner = canonicalName(spec.Owner)
	if err := in.validate(spec); err != nil {
		return NoTypeID, err
	}

	raw := NoTypeID
	if spec.Kind.IsNominal() && len(spec.Args) > 0 {
		var err error
		raw, err = in.Intern(Spec{Kind: spec.Kind, Name: spec.Name})
		if err != nil {
			return NoTypeID, err
		}
	}

	key := typeKey{
		Kind:  spec.Kind,
		Name:  spec.Name,
		Owner: spec.Owner,
		Args:  encodeIDs(spec.Args),
		Elem:  spec.Elem,
	}
	id, _, err := in.types.Intern(key, func(slot intern.ID) (Type, error) {
		self := TypeID(slot)
		t := Type{
			ID:    self,
			Kind:  spec.Kind,
			Name:  spec.Name,
			Owner: spec.Owner,
			Args:  cloneTypeArgs(spec.Args),
			Elem:  spec.Elem,
			Raw:   raw,
		}
		if spec.Kind.IsNominal() && raw == NoTypeID {
			t.Raw = self
		}
		return t, nil
	})
	if err != nil {
		return NoTypeID, err
	}
	return TypeID(id), nil
}

// MustIntern panics on malformed specs. Reserved for specs built from
// already valid descriptors.
func (in *Interner) MustIntern(spec Spec) TypeID {
	id, err := in.Intern(spec)
	if err != nil {
		panic(err)
	}
	return id
}

func (in *Interner) validate(spec Spec) error {
	subject := spec.Name
	switch spec.Kind {
	case KindVoid, KindPrimitive:
		if spec.Name == "" {
			return malformed(subject, "%s without a name", spec.Kind)
		}
		if len(spec.Args) > 0 || spec.Elem != NoTypeID {
			return malformed(subject, "%s cannot carry type arguments", spec.Kind)
		}
	case KindClass, KindInterface, KindEnum:
		if spec.Name == "" {
			return malformed(subject, "%s without a qualified name", spec.Kind)
		}
		if spec.Elem != NoTypeID {
			return malformed(subject, "%s cannot have an element type", spec.Kind)
		}
		if spec.Kind == KindEnum && len(spec.Args) > 0 {
			return malformed(subject, "enum cannot be parameterized")
		}
		for i, arg := range spec.Args {
			if err := in.validateArg(subject, arg); err != nil {
				return malformed(subject, "type argument %d: %v", i, err)
			}
		}
		if err := in.claimNominal(spec.Name, spec.Kind); err != nil {
			return err
		}
	case KindTypeVar:
		if spec.Name == "" || spec.Owner == "" {
			return malformed(subject, "type variable needs a name and a declaring owner")
		}
		if len(spec.Args) > 0 || spec.Elem != NoTypeID {
			return malformed(subject, "type variable cannot carry type arguments")
		}
	case KindArray:
		if spec.Name != "" || len(spec.Args) > 0 {
			return malformed(subject, "array is identified by its element only")
		}
		if err := in.validateArg("[]", spec.Elem); err != nil {
			return malformed("[]", "element: %v", err)
		}
	default:
		return malformed(subject, "unknown kind %s", spec.Kind)
	}
	return nil
}

func (in *Interner) validateArg(subject string, id TypeID) error {
	t, ok := in.Lookup(id)
	if !ok {
		return malformed(subject, "unresolved type ID %d", id)
	}
	if t.Kind == KindVoid {
		return malformed(subject, "void is not a value type")
	}
	return nil
}

// claimNominal rejects one qualified name registered under two kinds.
func (in *Interner) claimNominal(name string, kind Kind) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	prev, ok := in.nominal[name]
	if ok && prev != kind {
		return malformed(name, "declared as %s and %s", prev, kind)
	}
	if !ok {
		in.nominal[name] = kind
	}
	return nil
}

// NominalKind returns the kind a qualified name was first interned with.
func (in *Interner) NominalKind(name string) (Kind, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	k, ok := in.nominal[canonicalName(name)]
	return k, ok
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID {
		return Type{}, false
	}
	return in.types.Get(id.slot())
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// Find returns the ID of an already interned spec without creating it.
func (in *Interner) Find(spec Spec) (TypeID, bool) {
	id, ok := in.types.Lookup(typeKey{
		Kind:  spec.Kind,
		Name:  canonicalName(spec.Name),
		Owner: canonicalName(spec.Owner),
		Args:  encodeIDs(spec.Args),
		Elem:  spec.Elem,
	})
	return TypeID(id), ok
}

// TypeCount reports the number of interned type descriptors.
func (in *Interner) TypeCount() int { return in.types.Len() }

// EachType visits type descriptors in interning order.
func (in *Interner) EachType(fn func(Type) bool) {
	in.types.Each(func(_ intern.ID, t Type) bool { return fn(t) })
}

// IsParameterized reports whether id carries type arguments that are not all
// type variables.
func (in *Interner) IsParameterized(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok || len(t.Args) == 0 {
		return false
	}
	for _, arg := range t.Args {
		if a, ok := in.Lookup(arg); ok && a.Kind != KindTypeVar {
			return true
		}
	}
	return false
}

// RawOf returns the erased form of id: nominal types lose their arguments,
// type variables erase to their bound, arrays erase their element.
func (in *Interner) RawOf(id TypeID) TypeID {
	t, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	switch t.Kind {
	case KindClass, KindInterface, KindEnum:
		return t.Raw
	case KindTypeVar:
		bound := in.Bound(id)
		if bound == NoTypeID {
			return in.builtins.Object
		}
		return in.RawOf(bound)
	case KindArray:
		elem := in.RawOf(t.Elem)
		if elem == t.Elem {
			return id
		}
		return in.MustIntern(MakeArray(elem))
	default:
		return id
	}
}

// DeclareHierarchy records enclosing and super types of a nominal type. A
// repeated identical declaration is accepted; a conflicting one is malformed.
func (in *Interner) DeclareHierarchy(id TypeID, h Hierarchy) error {
	t, ok := in.Lookup(id)
	if !ok || !t.Kind.IsNominal() {
		return malformed(t.Name, "hierarchy declared on non-nominal type %d", id)
	}
	for _, ref := range append([]TypeID{h.Enclosing, h.Super}, h.Interfaces...) {
		if ref == NoTypeID {
			continue
		}
		if _, ok := in.Lookup(ref); !ok {
			return malformed(t.Name, "hierarchy references unresolved type ID %d", ref)
		}
	}
	if h.Super == id {
		return malformed(t.Name, "type extends itself")
	}
	h.Interfaces = cloneTypeArgs(h.Interfaces)

	in.mu.Lock()
	defer in.mu.Unlock()
	if prev, ok := in.hierarchy[id]; ok {
		if !sameHierarchy(prev, h) {
			return malformed(t.Name, "hierarchy declared twice with different supertypes")
		}
		return nil
	}
	in.hierarchy[id] = h
	return nil
}

// HierarchyOf returns the declared hierarchy of id.
func (in *Interner) HierarchyOf(id TypeID) (Hierarchy, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	h, ok := in.hierarchy[id]
	if !ok {
		return Hierarchy{}, false
	}
	h.Interfaces = cloneTypeArgs(h.Interfaces)
	return h, true
}

// DeclareBound sets the upper bound of a type variable. Bounds that lead
// back to the variable through other variables are malformed.
func (in *Interner) DeclareBound(typeVar, bound TypeID) error {
	t, ok := in.Lookup(typeVar)
	if !ok || t.Kind != KindTypeVar {
		return malformed(t.Name, "bound declared on non type variable %d", typeVar)
	}
	if _, ok := in.Lookup(bound); !ok {
		return malformed(t.Name, "bound references unresolved type ID %d", bound)
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	for cur := bound; cur != NoTypeID; cur = in.bounds[cur] {
		if cur == typeVar {
			return malformed(t.Name, "type variable bound cycle")
		}
	}
	if prev, ok := in.bounds[typeVar]; ok && prev != bound {
		return malformed(t.Name, "type variable bound declared twice")
	}
	in.bounds[typeVar] = bound
	return nil
}

// Bound returns the declared upper bound of a type variable.
func (in *Interner) Bound(typeVar TypeID) TypeID {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.bounds[typeVar]
}

func sameHierarchy(a, b Hierarchy) bool {
	if a.Enclosing != b.Enclosing || a.Super != b.Super || len(a.Interfaces) != len(b.Interfaces) {
		return false
	}
	for i := range a.Interfaces {
		if a.Interfaces[i] != b.Interfaces[i] {
			return false
		}
	}
	return true
}
