package skemaform

import (
	"github.com/reoring/skemaform/i18n"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

// Check walks every reachable schema node and reports references that fail
// to resolve and types outside the interpreted subset. Array items are
// checked at index 0. A $ref loop through object properties is reported once.
func (w *Walker) Check(node schema.Node, defs *schema.Defs) Issues {
	c := &checker{w: w, seen: map[*schema.Object]struct{}{}}
	c.node(node, defs, value.Root())
	return c.issues
}

type checker struct {
	w      *Walker
	seen   map[*schema.Object]struct{}
	issues Issues
}

func (c *checker) node(node schema.Node, defs *schema.Defs, at value.Path) {
	spec, err := c.w.Dispatch(node, defs)
	if err != nil {
		c.issues = AppendIssues(c.issues, refIssue(at, err))
		return
	}
	switch spec := spec.(type) {
	case ObjectSpec:
		if _, ok := c.seen[spec.Schema]; ok {
			return
		}
		c.seen[spec.Schema] = struct{}{}
		for _, p := range spec.Properties {
			c.node(p.Schema, spec.Defs, at.Key(p.Name))
		}
	case ArraySpec:
		c.node(spec.Items, spec.Defs, at.Index(0))
	case UnsupportedSpec:
		if spec.Type == schema.KindNull.String() {
			return
		}
		c.issues = AppendIssues(c.issues, Issue{
			Path:    at.Pointer(),
			Code:    CodeUnsupportedType,
			Message: i18n.T(CodeUnsupportedType, map[string]string{"got": spec.Type}),
		})
	}
}
