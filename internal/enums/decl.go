// Package enums decides how each enum declaration is represented at runtime.
//
// Classification is a pure function of declared metadata: the native flag,
// the constant list and the instance members that can carry a custom value.
// Problems that only affect one enum are reported to a diag.Reporter and the
// enum is excluded from lowering; nothing here aborts the run.
package enums

import (
	"lowerc/internal/types"
)

// Member is an enum field or constructor parameter, in declaration order.
type Member struct {
	Name   string
	Type   types.TypeID
	Static bool
	// CustomValue marks the member explicitly as the value holder.
	CustomValue bool
}

// Decl is the enum metadata the classifier needs.
type Decl struct {
	Type           types.TypeID
	Name           string // qualified name
	File           string
	Native         bool
	Namespace      string
	JSName         string // defaults to the simple name
	HasCustomValue bool
	Constants      []string
	Members        []Member
}

// Mapping is the foreign identity of a native enum: namespace.name. Two
// native enums with the same mapping share foreign values.
func (d Decl) Mapping() string {
	if !d.Native {
		return ""
	}
	name := d.JSName
	if name == "" {
		name = simpleName(d.Name)
	}
	if d.Namespace == "" {
		return name
	}
	return d.Namespace + "." + name
}

func simpleName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' || qualified[i] == '$' {
			return qualified[i+1:]
		}
	}
	return qualified
}

// candidates returns the members that may hold the custom value, in
// declaration order.
func (d Decl) candidates() []Member {
	var out []Member
	for _, m := range d.Members {
		if m.Static {
			continue
		}
		if m.CustomValue || m.Name == "value" {
			out = append(out, m)
		}
	}
	return out
}
