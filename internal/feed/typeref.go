package feed

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TypeRef is a parsed type reference: a name with optional type arguments
// and array dimensions. Type variables are plain names; the builder decides
// what a name refers to.
type TypeRef struct {
	Name string
	Args []TypeRef
	Dims int
}

func (r TypeRef) String() string {
	var sb strings.Builder
	r.writeTo(&sb)
	return sb.String()
}

func (r TypeRef) writeTo(sb *strings.Builder) {
	sb.WriteString(r.Name)
	if len(r.Args) > 0 {
		sb.WriteByte('<')
		for i, a := range r.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			a.writeTo(sb)
		}
		sb.WriteByte('>')
	}
	for i := 0; i < r.Dims; i++ {
		sb.WriteString("[]")
	}
}

// Elem returns the reference with one array dimension removed.
func (r TypeRef) Elem() TypeRef {
	if r.Dims > 0 {
		r.Dims--
	}
	return r
}

var ErrBadTypeRef = errors.New("malformed type reference")

// ParseTypeRef parses source syntax such as java.util.Map<K, java.util.List<V>>[]
// and JVM field descriptors such as [Ljava/lang/String; or [I.
func ParseTypeRef(s string) (TypeRef, error) {
	s = strings.TrimSpace(s)
	if isFieldDescriptor(s) {
		return parseFieldDescriptor(s)
	}
	p := refParser{src: s}
	ref, err := p.ref()
	if err != nil {
		return TypeRef{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeRef{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return ref, nil
}

// MustParseTypeRef is ParseTypeRef for fixed inputs.
func MustParseTypeRef(s string) TypeRef {
	r, err := ParseTypeRef(s)
	if err != nil {
		panic(err)
	}
	return r
}

type refParser struct {
	src string
	pos int
}

func (p *refParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q at %d: %s", ErrBadTypeRef, p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *refParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *refParser) ref() (TypeRef, error) {
	p.skipSpace()
	name, err := p.name()
	if err != nil {
		return TypeRef{}, err
	}
	ref := TypeRef{Name: name}
	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		if ref.Args, err = p.args(); err != nil {
			return TypeRef{}, err
		}
	}
	for {
		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "[]") {
			return ref, nil
		}
		p.pos += 2
		ref.Dims++
	}
}

func (p *refParser) args() ([]TypeRef, error) {
	var out []TypeRef
	for {
		arg, err := p.ref()
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or '>'")
		}
	}
}

// name scans a dotted identifier sequence.
func (p *refParser) name() (string, error) {
	start := p.pos
	for {
		if !p.ident() {
			return "", p.errorf("expected identifier")
		}
		if p.peek() != '.' {
			return p.src[start:p.pos], nil
		}
		p.pos++
	}
}

func (p *refParser) ident() bool {
	start := p.pos
	for i, r := range p.src[start:] {
		if !isIdentRune(r, i == 0) {
			break
		}
		p.pos = start + i + utf8.RuneLen(r)
	}
	return p.pos > start
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || r == '$' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}

// IsIdent reports whether s is a single Java identifier.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r, i == 0) {
			return false
		}
	}
	return true
}

// IsQualifiedName reports whether s is a dotted sequence of identifiers.
func IsQualifiedName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if !IsIdent(part) {
			return false
		}
	}
	return true
}

var descriptorBase = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

func isFieldDescriptor(s string) bool {
	if strings.HasPrefix(s, "[") {
		return true
	}
	return strings.HasPrefix(s, "L") && strings.HasSuffix(s, ";") && strings.Contains(s, "/")
}

func parseFieldDescriptor(s string) (TypeRef, error) {
	var ref TypeRef
	i := 0
	for i < len(s) && s[i] == '[' {
		ref.Dims++
		i++
	}
	if i >= len(s) {
		return TypeRef{}, fmt.Errorf("%w %q: missing element type", ErrBadTypeRef, s)
	}
	if s[i] == 'L' {
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 || i+semi != len(s)-1 {
			return TypeRef{}, fmt.Errorf("%w %q: unterminated class name", ErrBadTypeRef, s)
		}
		ref.Name = strings.ReplaceAll(s[i+1:i+semi], "/", ".")
		if !IsQualifiedName(ref.Name) {
			return TypeRef{}, fmt.Errorf("%w %q: bad class name", ErrBadTypeRef, s)
		}
		return ref, nil
	}
	base, ok := descriptorBase[s[i]]
	if !ok || i != len(s)-1 || (base == "void" && ref.Dims > 0) {
		return TypeRef{}, fmt.Errorf("%w %q", ErrBadTypeRef, s)
	}
	ref.Name = base
	return ref, nil
}
