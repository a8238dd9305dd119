// Package render prints a schema-shaped value as an indented text outline.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

// Colors holds the formatting functions for each outline element. A nil
// *Colors prints plain text.
type Colors struct {
	Key      func(a ...any) string
	Title    func(a ...any) string
	Kind     func(a ...any) string
	Null     func(a ...any) string
	Value    func(a ...any) string
	Required func(a ...any) string
	Problem  func(a ...any) string
}

func sprint(attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	c.EnableColor()
	return c.SprintFunc()
}

// NewColors returns the default palette.
func NewColors() *Colors {
	return &Colors{
		Key:      sprint(color.FgCyan),
		Title:    sprint(color.Bold),
		Kind:     sprint(color.FgBlue),
		Null:     sprint(color.FgMagenta),
		Value:    sprint(color.FgGreen),
		Required: sprint(color.FgYellow),
		Problem:  sprint(color.FgRed, color.Bold),
	}
}

// AutoColors returns NewColors when w is a terminal and nil otherwise.
func AutoColors(w io.Writer) *Colors {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return NewColors()
	}
	return nil
}

func (c *Colors) apply(f func(a ...any) string, s string) string {
	if f == nil {
		return s
	}
	return f(s)
}

// Outline writes one line per node of v, annotated from the schema:
//
//	person (object)
//	  name: "Ann" [string] required
//	  tags (array of string)
//	    0: "x" [string]
type Outline struct {
	Walker *skemaform.Walker
	Colors *Colors
	Indent string
}

// Write renders v against node.
func (o Outline) Write(w io.Writer, node schema.Node, defs *schema.Defs, v value.Value) error {
	r := &renderer{o: o, w: w}
	if r.o.Indent == "" {
		r.o.Indent = "  "
	}
	if r.o.Colors == nil {
		r.o.Colors = &Colors{}
	}
	r.node("", false, node, defs, v, 0)
	return r.err
}

type renderer struct {
	o   Outline
	w   io.Writer
	err error
}

func (r *renderer) line(depth int, s string) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintln(r.w, strings.Repeat(r.o.Indent, depth)+s)
}

func (r *renderer) node(label string, required bool, node schema.Node, defs *schema.Defs, v value.Value, depth int) {
	c := r.o.Colors
	head := label
	if head == "" {
		head = "(root)"
	}
	head = c.apply(c.Key, head)

	spec, err := r.o.Walker.Dispatch(node, defs)
	if err != nil {
		r.line(depth, fmt.Sprintf("%s: %s %s", head, r.leaf(v), c.apply(c.Problem, "! "+err.Error())))
		return
	}
	if t := spec.Meta().Title; t != "" && label != t {
		head += " " + c.apply(c.Title, strings.TrimSpace(t))
	}
	req := ""
	if required {
		req = " " + c.apply(c.Required, "required")
	}

	switch spec := spec.(type) {
	case skemaform.ObjectSpec:
		obj, ok := v.(*value.Object)
		if !ok {
			r.line(depth, fmt.Sprintf("%s: %s %s%s", head, r.leaf(v), c.apply(c.Kind, "[object]"), req))
			return
		}
		r.line(depth, fmt.Sprintf("%s %s%s", head, c.apply(c.Kind, "(object)"), req))
		for _, p := range spec.Properties {
			child, ok := obj.Get(p.Name)
			if !ok {
				child = value.Null()
			}
			r.node(p.Name, spec.Schema.IsRequired(p.Name), p.Schema, spec.Defs, child, depth+1)
		}
		for _, k := range obj.Keys() {
			if _, declared := spec.Schema.Property(k); !declared {
				child, _ := obj.Get(k)
				r.line(depth+1, fmt.Sprintf("%s: %s %s", c.apply(c.Key, k), r.leaf(child), c.apply(c.Problem, "! undeclared")))
			}
		}
	case skemaform.ArraySpec:
		arr, ok := v.(*value.Array)
		if !ok {
			r.line(depth, fmt.Sprintf("%s: %s %s%s", head, r.leaf(v), c.apply(c.Kind, "[array]"), req))
			return
		}
		r.line(depth, fmt.Sprintf("%s %s%s", head, c.apply(c.Kind, "(array of "+r.itemKind(spec)+")"), req))
		for i, it := range arr.Items() {
			r.node(fmt.Sprint(i), false, spec.Items, spec.Defs, it, depth+1)
		}
	case skemaform.FieldSpec:
		r.line(depth, fmt.Sprintf("%s: %s %s%s", head, r.leaf(v), c.apply(c.Kind, "["+spec.Kind.String()+"]"), req))
	case skemaform.UnsupportedSpec:
		kind := spec.Type
		if kind == "" {
			kind = "unsupported"
		}
		r.line(depth, fmt.Sprintf("%s: %s %s%s", head, r.leaf(v), c.apply(c.Kind, "["+kind+"]"), req))
	}
}

func (r *renderer) itemKind(spec skemaform.ArraySpec) string {
	items, err := r.o.Walker.Dispatch(spec.Items, spec.Defs)
	if err != nil {
		return "?"
	}
	switch s := items.(type) {
	case skemaform.FieldSpec:
		return s.Kind.String()
	case skemaform.ObjectSpec:
		return "object"
	case skemaform.ArraySpec:
		return "array"
	case skemaform.UnsupportedSpec:
		if s.Type != "" {
			return s.Type
		}
	}
	return "unsupported"
}

func (r *renderer) leaf(v value.Value) string {
	c := r.o.Colors
	if v == nil || v.Kind() == value.KindNull {
		return c.apply(c.Null, "null")
	}
	b, err := value.Marshal(v)
	if err != nil {
		return c.apply(c.Problem, err.Error())
	}
	return c.apply(c.Value, string(b))
}
