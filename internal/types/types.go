// Package types holds the interned descriptor model: type descriptors, method
// descriptors linked to their erasures, and the enum representation tag.
//
// Every descriptor lives in an Interner arena and is addressed by ID. Equal
// structural keys yield equal IDs, so comparing IDs is comparing descriptors.
// Descriptors are never mutated once interned; structural changes produce new
// descriptors (see AppendParameters).
package types

import (
	"fmt"

	"lowerc/internal/intern"
)

// TypeID uniquely identifies a type descriptor inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether id is not the sentinel.
func (id TypeID) IsValid() bool { return id != NoTypeID }

func (id TypeID) slot() intern.ID { return intern.ID(id) }

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindPrimitive
	KindClass
	KindInterface
	KindEnum
	KindTypeVar
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindPrimitive:
		return "primitive"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindTypeVar:
		return "typevar"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsNominal reports whether the kind names a declared class-like type.
func (k Kind) IsNominal() bool {
	return k == KindClass || k == KindInterface || k == KindEnum
}

// Type is the interned descriptor of a source type.
type Type struct {
	ID    TypeID
	Kind  Kind
	Name  string   // qualified name; type variable name for KindTypeVar
	Owner string   // declaring class or method for KindTypeVar
	Args  []TypeID // type arguments, empty for raw types
	Elem  TypeID   // element type for KindArray
	Raw   TypeID   // zero-argument form; NoTypeID for type variables and arrays
}

// Spec describes a type to intern. Only the fields relevant for Kind are read.
type Spec struct {
	Kind  Kind
	Name  string
	Owner string
	Args  []TypeID
	Elem  TypeID
}

// Descriptor helpers ---------------------------------------------------------

// MakePrimitive describes a primitive such as int or boolean.
func MakePrimitive(name string) Spec {
	return Spec{Kind: KindPrimitive, Name: name}
}

// MakeClass describes a class, optionally parameterized.
func MakeClass(name string, args ...TypeID) Spec {
	return Spec{Kind: KindClass, Name: name, Args: args}
}

// MakeInterface describes an interface, optionally parameterized.
func MakeInterface(name string, args ...TypeID) Spec {
	return Spec{Kind: KindInterface, Name: name, Args: args}
}

// MakeEnum describes an enum class.
func MakeEnum(name string) Spec {
	return Spec{Kind: KindEnum, Name: name}
}

// MakeTypeVar describes type variable name declared by owner.
func MakeTypeVar(owner, name string) Spec {
	return Spec{Kind: KindTypeVar, Owner: owner, Name: name}
}

// MakeArray describes a one-dimensional array of elem.
func MakeArray(elem TypeID) Spec {
	return Spec{Kind: KindArray, Elem: elem}
}
