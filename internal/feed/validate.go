package feed

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"lowerc/internal/diag"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "ident", func(fl validator.FieldLevel) bool {
			return IsIdent(fl.Field().String())
		})
		mustRegister(v, "qualified", func(fl validator.FieldLevel) bool {
			return IsQualifiedName(fl.Field().String())
		})
		mustRegister(v, "typeref", func(fl validator.FieldLevel) bool {
			_, err := ParseTypeRef(fl.Field().String())
			return err == nil
		})
		v.RegisterStructValidation(validateTypeDecl, TypeDecl{})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func validateTypeDecl(sl validator.StructLevel) {
	td, ok := sl.Current().Interface().(TypeDecl)
	if !ok {
		return
	}
	switch {
	case td.Kind == "enum" && td.Enum == nil:
		sl.ReportError(td.Enum, "enum", "Enum", "enum_required", "")
	case td.Kind != "enum" && td.Enum != nil:
		sl.ReportError(td.Enum, "enum", "Enum", "enum_only", td.Kind)
	}
}

// Validate checks every record of u and reports each violation as FED3002.
// It returns false if any record is invalid.
func Validate(u *Unit, r diag.Reporter) bool {
	ok := true
	for _, td := range u.Types {
		if !validateRecord(td, td.Name, td.File, r) {
			ok = false
		}
	}
	for _, md := range u.Methods {
		if !validateRecord(md, md.Subject(), md.File, r) {
			ok = false
		}
	}
	return ok
}

func validateRecord(rec any, subject, file string, r diag.Reporter) bool {
	err := validatorInstance().Struct(rec)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		diag.ReportError(r, diag.FeedValidation, subject, err.Error()).InFile(file).Emit()
		return false
	}
	for _, fe := range verrs {
		code := diag.FeedValidation
		if fe.Tag() == "typeref" {
			code = diag.FeedBadTypeRef
		}
		msg := fmt.Sprintf("%s: %s", fieldPath(fe), formatFieldError(fe))
		diag.ReportError(r, code, subject, msg).InFile(file).Emit()
	}
	return false
}

// fieldPath drops the struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "ident":
		return fmt.Sprintf("%q is not an identifier", fe.Value())
	case "qualified":
		return fmt.Sprintf("%q is not a qualified name", fe.Value())
	case "typeref":
		return fmt.Sprintf("%q is not a type reference", fe.Value())
	case "enum_required":
		return "enum declarations need an [enum] table"
	case "enum_only":
		return fmt.Sprintf("a %s cannot carry enum metadata", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
