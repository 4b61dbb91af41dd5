package lowering

import "lowerc/internal/types"

// AccessKind distinguishes the member forms the code generator sees.
type AccessKind uint8

const (
	AccessConstant AccessKind = iota + 1
	AccessField
	AccessMethod
)

// Access is a member access resolved through an enum's declared type.
type Access struct {
	Kind   AccessKind
	Member string
}

// OperationOf maps an access on the enum described by info onto the
// operation the rules table is keyed by. Every instance method or field that
// has no dedicated operation is a devirtualized access.
func OperationOf(info types.EnumInfo, a Access) Operation {
	switch a.Kind {
	case AccessConstant:
		return OpConstantRead
	case AccessField:
		if info.Member != "" && a.Member == info.Member {
			return OpValueRead
		}
		return OpDevirtualizedCall
	case AccessMethod:
		switch a.Member {
		case "ordinal":
			return OpOrdinal
		case "equals":
			return OpEquals
		case "hashCode":
			return OpHashCode
		case "toString":
			return OpToString
		case "compareTo":
			return OpCompareTo
		}
		return OpDevirtualizedCall
	}
	return OpDevirtualizedCall
}

// IsDevirtualized is the single predicate code generators use to decide
// whether an access must be preceded by the static initializer check.
func IsDevirtualized(info types.EnumInfo, a Access) bool {
	return Lookup(info.Variant, OperationOf(info, a)).Clinit
}
