// Package lowering answers how a code generator must emit each operation on
// an enum value, keyed by the enum's representation variant.
//
// Lookups never fail: every (variant, operation) pair has a rule.
package lowering

// Operation is something generated code does with an enum value.
type Operation uint8

const (
	OpInvalid Operation = iota
	// OpSwitch dispatches on a value of the enum type.
	OpSwitch
	// OpIdentity is == between two values of the declared enum type.
	OpIdentity
	OpEquals
	OpHashCode
	OpToString
	// OpInstanceOf tests against the declared enum type.
	OpInstanceOf
	// OpCast casts to the declared enum type.
	OpCast
	// OpConstantRead reads an enum constant.
	OpConstantRead
	OpOrdinal
	// OpValueRead reads the custom value member.
	OpValueRead
	// OpDevirtualizedCall is any other instance method call or field read
	// resolved through the declared enum type.
	OpDevirtualizedCall
	// OpCompareTo goes through the generic Comparable contract.
	OpCompareTo
	OpInstanceOfEnum
	OpCastToEnum
	OpInstanceOfComparable
	OpCastToComparable
	OpInstanceOfSerializable
	// OpInstanceOfForeignKind tests against the wrapper of the foreign kind
	// (String, Double or Boolean).
	OpInstanceOfForeignKind
	// OpBox materialises a value of generic or inferred type.
	OpBox
	// OpUnbox consumes a value through a specialised slot of the
	// underlying primitive type.
	OpUnbox
	// OpNoAutobox passes a value to a slot that opts out of boxing.
	OpNoAutobox

	opCount
)

var opNames = [...]string{
	OpInvalid:                "invalid",
	OpSwitch:                 "switch",
	OpIdentity:               "identity",
	OpEquals:                 "equals",
	OpHashCode:               "hashCode",
	OpToString:               "toString",
	OpInstanceOf:             "instanceof",
	OpCast:                   "cast",
	OpConstantRead:           "constant",
	OpOrdinal:                "ordinal",
	OpValueRead:              "value",
	OpDevirtualizedCall:      "devirtualized",
	OpCompareTo:              "compareTo",
	OpInstanceOfEnum:         "instanceof Enum",
	OpCastToEnum:             "cast Enum",
	OpInstanceOfComparable:   "instanceof Comparable",
	OpCastToComparable:       "cast Comparable",
	OpInstanceOfSerializable: "instanceof Serializable",
	OpInstanceOfForeignKind:  "instanceof foreign",
	OpBox:                    "box",
	OpUnbox:                  "unbox",
	OpNoAutobox:              "no-autobox",
}

func (op Operation) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// Operations lists every valid operation in declaration order.
func Operations() []Operation {
	out := make([]Operation, 0, opCount-1)
	for op := OpSwitch; op < opCount; op++ {
		out = append(out, op)
	}
	return out
}

// ParseOperation is the inverse of String.
func ParseOperation(s string) (Operation, bool) {
	for op := OpSwitch; op < opCount; op++ {
		if opNames[op] == s {
			return op, true
		}
	}
	return OpInvalid, false
}
