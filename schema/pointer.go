package schema

import (
	"fmt"
	"strings"
)

// Pointer is a parsed same-document reference such as "#/$defs/Address".
type Pointer struct {
	tokens []string
}

// ParsePointer parses a $ref value. Only same-document fragments are
// accepted; tokens are unescaped per RFC 6901.
func ParsePointer(ref string) (Pointer, error) {
	if !strings.HasPrefix(ref, "#") {
		return Pointer{}, fmt.Errorf("schema: only same-document references are supported: %q", ref)
	}
	frag := ref[1:]
	if frag == "" {
		return Pointer{}, nil
	}
	if frag[0] != '/' {
		return Pointer{}, fmt.Errorf("schema: anchor references are not supported: %q", ref)
	}
	parts := strings.Split(frag[1:], "/")
	toks := make([]string, len(parts))
	for i, p := range parts {
		toks[i] = strings.ReplaceAll(strings.ReplaceAll(p, "~1", "/"), "~0", "~")
	}
	return Pointer{tokens: toks}, nil
}

// DefsPointer returns the canonical pointer to a named definition.
func DefsPointer(name string) Pointer { return Pointer{tokens: []string{"$defs", name}} }

// Tokens returns the unescaped reference tokens.
func (p Pointer) Tokens() []string { return append([]string(nil), p.tokens...) }

// IsRoot reports whether the pointer denotes the whole document ("#").
func (p Pointer) IsRoot() bool { return len(p.tokens) == 0 }

// DefinitionName returns the name the pointer designates in a definitions
// registry: the trailing token. "#/$defs/<name>" and "#/definitions/<name>"
// are the canonical forms.
func (p Pointer) DefinitionName() (string, bool) {
	if len(p.tokens) == 0 {
		return "", false
	}
	return p.tokens[len(p.tokens)-1], true
}

func (p Pointer) String() string {
	if len(p.tokens) == 0 {
		return "#"
	}
	b := &strings.Builder{}
	b.WriteByte('#')
	for _, t := range p.tokens {
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(t, "~", "~0"), "/", "~1"))
	}
	return b.String()
}
