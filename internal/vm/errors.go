package vm

import (
	"fmt"

	"lowerc/internal/lowering"
)

// Error is a runtime failure of the evaluated program.
type Error struct {
	Fault   lowering.Fault
	Op      lowering.Operation
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("panic %s: %s: %s", e.Fault, e.Op, e.Message)
}

// Is matches another *Error with the same Fault, so callers can test with
// errors.Is(err, vm.ErrInvalidCast).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == lowering.OpInvalid && t.Message == "" && t.Fault == e.Fault
}

var (
	ErrNullEnumDereference = &Error{Fault: lowering.FaultNullEnumDereference}
	ErrInvalidCast         = &Error{Fault: lowering.FaultInvalidCast}
	ErrInvalidComparison   = &Error{Fault: lowering.FaultInvalidComparison}
)

func fault(f lowering.Fault, op lowering.Operation, format string, args ...any) *Error {
	return &Error{Fault: f, Op: op, Message: fmt.Sprintf(format, args...)}
}
