package schema

// Kind identifies a schema node variant.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInteger
	KindBoolean
	KindObject
	KindArray
	KindNull
	KindRef
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindNull:
		return "null"
	case KindRef:
		return "$ref"
	default:
		return "unsupported"
	}
}

// IsField reports whether the kind is an editable scalar (string, number,
// integer, boolean).
func (k Kind) IsField() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean:
		return true
	}
	return false
}

// kindFromType maps a JSON Schema "type" keyword to a Kind.
func kindFromType(t string) (Kind, bool) {
	switch t {
	case "string":
		return KindString, true
	case "number":
		return KindNumber, true
	case "integer":
		return KindInteger, true
	case "boolean":
		return KindBoolean, true
	case "object":
		return KindObject, true
	case "array":
		return KindArray, true
	case "null":
		return KindNull, true
	}
	return KindUnsupported, false
}

// Node is one schema (sub)document. The set of implementations is closed:
// *Primitive, *Object, *Array, *Ref and *Unsupported.
type Node interface {
	Kind() Kind
	Meta() Common
	isNode()
}

// Common carries the keywords every node may declare.
type Common struct {
	Title       string
	Description string
	// Defs holds the $defs declared on this node, nil when there are none.
	Defs *Defs
}

// Meta returns the shared keywords.
func (c Common) Meta() Common { return c }

// Primitive is a string, number, integer, boolean or null schema.
type Primitive struct {
	Common
	Type Kind
}

func (p *Primitive) Kind() Kind { return p.Type }
func (*Primitive) isNode()      {}

// Property is one declared object property.
type Property struct {
	Name   string
	Schema Node
}

// Object is an object schema with properties in declaration order.
type Object struct {
	Common
	Properties []Property
	Required   []string
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) isNode()    {}

// Property returns the schema declared for name.
func (o *Object) Property(name string) (Node, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// PropertyNames returns the declared property names in order.
func (o *Object) PropertyNames() []string {
	names := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		names[i] = p.Name
	}
	return names
}

// IsRequired reports whether name is listed under required.
func (o *Object) IsRequired(name string) bool {
	for _, r := range o.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Array is an array schema. A missing "items" keyword loads as Unsupported.
type Array struct {
	Common
	Items Node
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) isNode()    {}

// Ref is a {"$ref": "..."} indirection.
type Ref struct {
	Common
	Ref string
}

func (*Ref) Kind() Kind { return KindRef }
func (*Ref) isNode()    {}

// Pointer parses the reference string.
func (r *Ref) Pointer() (Pointer, error) { return ParsePointer(r.Ref) }

// Unsupported is an inert leaf for a type outside the interpreted subset.
// Type holds the raw type keyword ("" when absent).
type Unsupported struct {
	Common
	Type string
}

func (*Unsupported) Kind() Kind { return KindUnsupported }
func (*Unsupported) isNode()    {}
