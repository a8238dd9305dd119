package skemaform

import (
	"fmt"

	"github.com/reoring/skemaform/schema"
)

// Spec is the handling strategy for one resolved schema node. The set of
// implementations is closed: FieldSpec, ObjectSpec, ArraySpec and
// UnsupportedSpec.
type Spec interface {
	Meta() schema.Common
	isSpec()
}

// FieldSpec describes an editable scalar (string, number, integer, boolean).
type FieldSpec struct {
	schema.Common
	Kind schema.Kind
}

// ObjectSpec describes an object. Defs is the ambient registry merged with
// the node's local $defs.
type ObjectSpec struct {
	schema.Common
	Schema     *schema.Object
	Properties []schema.Property
	Required   []string
	Defs       *schema.Defs
}

// PropertyOrder returns the declared property names.
func (s ObjectSpec) PropertyOrder() []string { return s.Schema.PropertyNames() }

// ArraySpec describes an array whose elements follow Items.
type ArraySpec struct {
	schema.Common
	Items schema.Node
	Defs  *schema.Defs
}

// UnsupportedSpec is an inert leaf: null schemas and types outside the
// interpreted subset.
type UnsupportedSpec struct {
	schema.Common
	Type string
}

func (FieldSpec) isSpec()       {}
func (ObjectSpec) isSpec()      {}
func (ArraySpec) isSpec()       {}
func (UnsupportedSpec) isSpec() {}

// Walker resolves schema nodes and classifies them. Synthesis and mutation
// both traverse schemas through the same Walker.
type Walker struct {
	resolver *schema.Resolver
}

// NewWalker returns a Walker resolving through r. A nil r resolves without
// caching.
func NewWalker(r *schema.Resolver) *Walker { return &Walker{resolver: r} }

// Dispatch resolves node against defs and returns its Spec. Resolution
// failures are returned unchanged (*schema.RefError) for the caller to contain.
func (w *Walker) Dispatch(node schema.Node, defs *schema.Defs) (Spec, error) {
	if node == nil {
		return UnsupportedSpec{}, nil
	}
	var r *schema.Resolver
	if w != nil {
		r = w.resolver
	}
	defs = r.MergeDefs(defs, node.Meta().Defs)
	target, err := r.Resolve(node, defs)
	if err != nil {
		return nil, err
	}
	if target != node {
		defs = r.MergeDefs(defs, target.Meta().Defs)
	}

	switch n := target.(type) {
	case *schema.Primitive:
		if n.Type.IsField() {
			return FieldSpec{Common: n.Common, Kind: n.Type}, nil
		}
		return UnsupportedSpec{Common: n.Common, Type: n.Type.String()}, nil
	case *schema.Object:
		return ObjectSpec{Common: n.Common, Schema: n, Properties: n.Properties, Required: n.Required, Defs: defs}, nil
	case *schema.Array:
		items := n.Items
		if items == nil {
			items = &schema.Unsupported{}
		}
		return ArraySpec{Common: n.Common, Items: items, Defs: defs}, nil
	case *schema.Unsupported:
		return UnsupportedSpec{Common: n.Common, Type: n.Type}, nil
	}
	return UnsupportedSpec{Common: target.Meta(), Type: target.Kind().String()}, nil
}

// SpecVisitor handles every Spec variant. Adding a variant adds a method, so
// every visitor must handle it.
type SpecVisitor[T any] interface {
	Field(FieldSpec) T
	Object(ObjectSpec) T
	Array(ArraySpec) T
	Unsupported(UnsupportedSpec) T
}

// Visit calls the visitor method matching s.
func Visit[T any](s Spec, v SpecVisitor[T]) T {
	switch s := s.(type) {
	case FieldSpec:
		return v.Field(s)
	case ObjectSpec:
		return v.Object(s)
	case ArraySpec:
		return v.Array(s)
	case UnsupportedSpec:
		return v.Unsupported(s)
	}
	panic(fmt.Sprintf("skemaform: unknown spec %T", s))
}
