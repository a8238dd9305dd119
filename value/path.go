package value

import (
	"strconv"
	"strings"
)

// Path locates a node inside a tree. Each token is an object key or, when the
// container at that level is an array, a decimal index.
type Path []string

// Root returns the empty path.
func Root() Path { return nil }

// Key returns a copy of p extended with an object key.
func (p Path) Key(name string) Path {
	return append(append(Path{}, p...), name)
}

// Index returns a copy of p extended with an array index.
func (p Path) Index(i int) Path {
	return append(append(Path{}, p...), strconv.Itoa(i))
}

// Pointer renders p as a JSON Pointer; the root renders as "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, tok := range p {
		b.WriteByte('/')
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(tok, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

func (p Path) String() string { return p.Pointer() }

// ParsePointer parses a JSON Pointer. "" and "/" both denote the root.
func ParsePointer(s string) (Path, error) {
	if s == "" || s == "/" {
		return Root(), nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, &SyntaxError{Msg: "pointer must start with '/': " + strconv.Quote(s)}
	}
	parts := strings.Split(s[1:], "/")
	p := make(Path, len(parts))
	for i, part := range parts {
		p[i] = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
	}
	return p, nil
}

// MustParsePointer is ParsePointer for literals.
func MustParsePointer(s string) Path {
	p, err := ParsePointer(s)
	if err != nil {
		panic(err)
	}
	return p
}

// AsIndex interprets a path token as an array index.
func AsIndex(tok string) (int, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	i, err := strconv.Atoi(tok)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Lookup returns the node at p, or false when p does not exist in root.
func Lookup(root Value, p Path) (Value, bool) {
	cur := root
	for _, tok := range p {
		switch c := cur.(type) {
		case *Object:
			v, ok := c.Get(tok)
			if !ok {
				return nil, false
			}
			cur = v
		case *Array:
			i, ok := AsIndex(tok)
			if !ok {
				return nil, false
			}
			v, ok := c.At(i)
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}
