package enums

import (
	"errors"
	"fmt"

	"lowerc/internal/diag"
	"lowerc/internal/types"
)

var (
	ErrInvalidCustomValueKind   = errors.New("invalid custom value kind")
	ErrMissingCustomValueMember = errors.New("custom value declared without a value member")
	ErrDuplicateConstant        = errors.New("duplicate enum constant")
	ErrNotAnEnum                = errors.New("not an enum")
	errUnknownMemberType        = errors.New("unknown member type")
)

// Error excludes a single enum from lowering.
type Error struct {
	Enum   string
	Code   diag.Code
	Err    error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Enum, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Enum, e.Err, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinel returns the error value behind an exclusion code, so outcomes
// can be rebuilt from their diagnostics.
func Sentinel(code diag.Code) error {
	switch code {
	case diag.EnumInvalidCustomValueKind:
		return ErrInvalidCustomValueKind
	case diag.EnumMissingCustomValueMember:
		return ErrMissingCustomValueMember
	case diag.EnumDuplicateConstant:
		return ErrDuplicateConstant
	case diag.EnumNotAnEnum:
		return ErrNotAnEnum
	default:
		return nil
	}
}

// Outcome is the result of classifying one declaration.
type Outcome struct {
	Info types.EnumInfo
	// Err is non-nil when the enum is excluded from lowering.
	Err *Error
	// Diagnostics holds every finding, including the one behind Err.
	Diagnostics []diag.Diagnostic
}

// Excluded reports whether the enum must not be lowered.
func (o Outcome) Excluded() bool { return o.Err != nil }

// Classifier resolves member types through an interner.
type Classifier struct {
	in *types.Interner
}

func NewClassifier(in *types.Interner) *Classifier {
	return &Classifier{in: in}
}

// Classify derives the representation variant of d. It reads the interner
// but never writes to it, so equal declarations always produce equal
// outcomes.
func (c *Classifier) Classify(d Decl) Outcome {
	var out Outcome
	fail := func(code diag.Code, err error, subject, detail string) Outcome {
		out.Err = &Error{Enum: d.Name, Code: code, Err: err, Detail: detail}
		msg := err.Error()
		if detail != "" {
			msg += ": " + detail
		}
		out.Diagnostics = append(out.Diagnostics, diag.NewError(code, subject, msg).InFile(d.File))
		return out
	}

	if t, ok := c.in.Lookup(d.Type); !ok || t.Kind != types.KindEnum {
		return fail(diag.EnumNotAnEnum, ErrNotAnEnum, d.Name, "")
	}

	seen := make(map[string]struct{}, len(d.Constants))
	for _, name := range d.Constants {
		if _, dup := seen[name]; dup {
			return fail(diag.EnumDuplicateConstant, ErrDuplicateConstant, d.Name+"."+name, name)
		}
		seen[name] = struct{}{}
	}

	info := types.EnumInfo{
		Namespace: d.Mapping(),
		Constants: append([]string(nil), d.Constants...),
	}

	cands := d.candidates()
	if len(cands) == 0 {
		if d.HasCustomValue {
			return fail(diag.EnumMissingCustomValueMember, ErrMissingCustomValueMember, d.Name, "")
		}
		if d.Native {
			info.Variant = types.NativeValueless
		} else {
			info.Variant = types.BoxedOrdinal
		}
		out.Info = info
		return out
	}

	chosen := cands[0]
	if len(cands) > 1 {
		w := diag.New(diag.SevWarning, diag.EnumAmbiguousCustomValue, d.Name,
			fmt.Sprintf("%d candidate value members, using %q", len(cands), chosen.Name)).InFile(d.File)
		for _, m := range cands[1:] {
			w = w.WithNote(d.Name+"."+m.Name, "ignored")
		}
		out.Diagnostics = append(out.Diagnostics, w)
	}

	memberType, ok := c.in.Lookup(chosen.Type)
	if !ok {
		return fail(diag.EnumInvalidCustomValueKind, ErrInvalidCustomValueKind, d.Name+"."+chosen.Name, errUnknownMemberType.Error())
	}
	kind := KindOf(memberType)
	if kind == types.ValueNone {
		return fail(diag.EnumInvalidCustomValueKind, ErrInvalidCustomValueKind, d.Name+"."+chosen.Name,
			fmt.Sprintf("declared type %s is not a string, number or boolean", c.in.Describe(chosen.Type)))
	}

	if d.Native {
		info.Variant = types.NativeCustomValue(kind)
	} else {
		info.Variant = types.BoxedCustomValue(kind)
	}
	info.Member = chosen.Name
	out.Info = info
	return out
}
