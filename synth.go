package skemaform

import (
	"github.com/reoring/skemaform/i18n"
	"github.com/reoring/skemaform/internal/logging"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

// Synthesize builds the default value for node: null for scalars and
// unsupported leaves, an object with every declared property for objects and
// an empty array for arrays. Reference failures are contained to the subtree
// they occur in, which becomes null and is reported in the returned Issues.
func Synthesize(node schema.Node, defs *schema.Defs) (value.Value, Issues) {
	return NewWalker(nil).Synthesize(node, defs)
}

// Synthesize is the package-level Synthesize using w for resolution.
func (w *Walker) Synthesize(node schema.Node, defs *schema.Defs) (value.Value, Issues) {
	return w.synthesizeAt(node, defs, value.Root())
}

func (w *Walker) synthesizeAt(node schema.Node, defs *schema.Defs, at value.Path) (value.Value, Issues) {
	s := &synthesizer{w: w, active: map[*schema.Object]struct{}{}}
	v := s.node(node, defs, at)
	return v, s.issues
}

type synthesizer struct {
	w      *Walker
	issues Issues
	// objects currently being expanded; a repeat means a $ref loop through
	// object properties, which has no finite default.
	active map[*schema.Object]struct{}
}

func (s *synthesizer) node(node schema.Node, defs *schema.Defs, at value.Path) value.Value {
	spec, err := s.w.Dispatch(node, defs)
	if err != nil {
		iss := refIssue(at, err)
		logging.Debug().Str("path", iss.Path).Str("code", iss.Code).Err(err).Msg("synthesis contained a reference failure")
		s.issues = AppendIssues(s.issues, iss)
		return value.Null()
	}
	return Visit[value.Value](spec, synthVisitor{s: s, at: at})
}

type synthVisitor struct {
	s  *synthesizer
	at value.Path
}

func (v synthVisitor) Field(FieldSpec) value.Value { return value.Null() }

func (v synthVisitor) Object(spec ObjectSpec) value.Value {
	if _, loop := v.s.active[spec.Schema]; loop {
		v.s.issues = AppendIssues(v.s.issues, Issue{
			Path:    v.at.Pointer(),
			Code:    CodeCyclicRef,
			Message: i18n.T(CodeCyclicRef, nil),
			Cause:   schema.ErrCyclicReference,
		})
		return value.Null()
	}
	v.s.active[spec.Schema] = struct{}{}
	defer delete(v.s.active, spec.Schema)

	obj := value.NewObject()
	for _, p := range spec.Properties {
		obj.Set(p.Name, v.s.node(p.Schema, spec.Defs, v.at.Key(p.Name)))
	}
	return obj
}

func (v synthVisitor) Array(ArraySpec) value.Value { return value.NewArray() }

func (v synthVisitor) Unsupported(UnsupportedSpec) value.Value { return value.Null() }
