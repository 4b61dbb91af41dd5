package lowering

// Fault is a failure the generated program raises at its own runtime.
type Fault uint8

const (
	FaultNone Fault = iota
	// FaultNullEnumDereference: switch or member access on a null enum.
	FaultNullEnumDereference
	// FaultInvalidCast: a cast whose operand does not fit the target.
	FaultInvalidCast
	// FaultInvalidComparison: Comparable contract across unrelated types.
	FaultInvalidComparison
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultNullEnumDereference:
		return "NullEnumDereference"
	case FaultInvalidCast:
		return "InvalidCast"
	case FaultInvalidComparison:
		return "InvalidComparison"
	default:
		return "unknown"
	}
}
