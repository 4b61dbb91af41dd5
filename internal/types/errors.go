package types

import (
	"errors"
	"fmt"
)

// ErrMalformedKey is the sentinel matched by every MalformedKeyError.
var ErrMalformedKey = errors.New("malformed descriptor key")

// MalformedKeyError reports a structural key the interner refuses to
// canonicalise. It always indicates a frontend defect and aborts the
// compilation unit.
type MalformedKeyError struct {
	Subject string
	Reason  string
}

func (e *MalformedKeyError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedKey, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrMalformedKey, e.Subject, e.Reason)
}

func (e *MalformedKeyError) Unwrap() error { return ErrMalformedKey }

func malformed(subject, format string, args ...any) error {
	return &MalformedKeyError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}
