// Package feed reads the declaration records the frontend hands to the
// descriptor builder. Records arrive once per declaration, as TOML, YAML or
// JSON documents, and are validated before anything is interned.
package feed

// Unit is one compilation unit worth of declarations.
type Unit struct {
	Name    string       `toml:"unit" yaml:"unit" json:"unit"`
	Types   []TypeDecl   `toml:"type" yaml:"types" json:"types" validate:"dive"`
	Methods []MethodDecl `toml:"method" yaml:"methods" json:"methods" validate:"dive"`
}

// TypeDecl declares a class, interface or enum.
type TypeDecl struct {
	Kind       string      `toml:"kind" yaml:"kind" json:"kind" validate:"required,oneof=class interface enum"`
	Name       string      `toml:"name" yaml:"name" json:"name" validate:"required,qualified"`
	TypeParams []TypeParam `toml:"type_params" yaml:"type_params" json:"type_params" validate:"dive"`
	Enclosing  string      `toml:"enclosing" yaml:"enclosing" json:"enclosing" validate:"omitempty,qualified"`
	Super      string      `toml:"super" yaml:"super" json:"super" validate:"omitempty,typeref"`
	Interfaces []string    `toml:"interfaces" yaml:"interfaces" json:"interfaces" validate:"dive,typeref"`
	Enum       *EnumDecl   `toml:"enum" yaml:"enum" json:"enum"`

	// File is set by the loader.
	File string `toml:"-" yaml:"-" json:"-"`
}

// TypeParam is a declared type variable with an optional upper bound.
type TypeParam struct {
	Name  string `toml:"name" yaml:"name" json:"name" validate:"required,ident"`
	Bound string `toml:"bound" yaml:"bound" json:"bound" validate:"omitempty,typeref"`
}

// EnumDecl is the enum part of a TypeDecl.
type EnumDecl struct {
	Native         bool         `toml:"native" yaml:"native" json:"native"`
	Namespace      string       `toml:"namespace" yaml:"namespace" json:"namespace"`
	JSName         string       `toml:"js_name" yaml:"js_name" json:"js_name"`
	HasCustomValue bool         `toml:"has_custom_value" yaml:"has_custom_value" json:"has_custom_value"`
	Constants      []string     `toml:"constants" yaml:"constants" json:"constants" validate:"dive,required,ident"`
	Members        []MemberDecl `toml:"member" yaml:"members" json:"members" validate:"dive"`
}

// MemberDecl is an enum field that may hold the custom value.
type MemberDecl struct {
	Name        string `toml:"name" yaml:"name" json:"name" validate:"required,ident"`
	Type        string `toml:"type" yaml:"type" json:"type" validate:"required,typeref"`
	Static      bool   `toml:"static" yaml:"static" json:"static"`
	CustomValue bool   `toml:"custom_value" yaml:"custom_value" json:"custom_value"`
}

// MethodDecl declares a method of Owner.
type MethodDecl struct {
	Owner       string      `toml:"owner" yaml:"owner" json:"owner" validate:"required,qualified"`
	Name        string      `toml:"name" yaml:"name" json:"name" validate:"required,ident"`
	TypeParams  []TypeParam `toml:"type_params" yaml:"type_params" json:"type_params" validate:"dive"`
	Params      []string    `toml:"params" yaml:"params" json:"params" validate:"dive,typeref"`
	Return      string      `toml:"return" yaml:"return" json:"return" validate:"omitempty,typeref"`
	Visibility  string      `toml:"visibility" yaml:"visibility" json:"visibility" validate:"omitempty,oneof=public protected package private"`
	Static      bool        `toml:"static" yaml:"static" json:"static"`
	Native      bool        `toml:"native" yaml:"native" json:"native"`
	Constructor bool        `toml:"constructor" yaml:"constructor" json:"constructor"`

	File string `toml:"-" yaml:"-" json:"-"`
}

// Subject names the method for diagnostics: Owner.name.
func (m MethodDecl) Subject() string {
	return m.Owner + "." + m.Name
}

// ReturnType is the declared return type, void when omitted.
func (m MethodDecl) ReturnType() string {
	if m.Return == "" {
		return "void"
	}
	return m.Return
}

// Merge appends the declarations of other to u. The first non-empty unit
// name wins.
func (u *Unit) Merge(other *Unit) {
	if other == nil {
		return
	}
	if u.Name == "" {
		u.Name = other.Name
	}
	u.Types = append(u.Types, other.Types...)
	u.Methods = append(u.Methods, other.Methods...)
}
