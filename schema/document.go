package schema

import (
	"bytes"
	"fmt"

	"github.com/reoring/skemaform/value"
)

// DefaultMaxDepth bounds nesting of schema documents at load time.
const DefaultMaxDepth = 256

// Document is a loaded schema document. Defs holds the document-level $defs
// (the root node's local definitions).
type Document struct {
	Name     string
	Root     Node
	Defs     *Defs
	Warnings []string
}

// Title returns the root title.
func (d *Document) Title() string {
	if d == nil || d.Root == nil {
		return ""
	}
	return d.Root.Meta().Title
}

// LoadOpt bundles loader options.
type LoadOpt struct {
	// MaxDepth bounds document nesting; 0 selects DefaultMaxDepth.
	MaxDepth int
}

func loadOpt(opts []LoadOpt) LoadOpt {
	var opt LoadOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth == 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	return opt
}

// ParseJSON loads a JSON schema document. Property order follows the input;
// duplicate keys are rejected.
func ParseJSON(data []byte, opts ...LoadOpt) (*Document, error) {
	opt := loadOpt(opts)
	v, err := value.Unmarshal(data, value.DecodeOpt{RejectDuplicateKeys: true, MaxDepth: opt.MaxDepth})
	if err != nil {
		return nil, fmt.Errorf("schema: invalid JSON: %w", err)
	}
	return FromValue(v)
}

// Parse loads a document, treating input that starts with '{' as JSON and
// anything else as YAML.
func Parse(data []byte, opts ...LoadOpt) (*Document, error) {
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		return ParseJSON(data, opts...)
	}
	return ParseYAML(data, opts...)
}

// FromValue interprets an already-decoded tree as a schema document.
func FromValue(v value.Value) (*Document, error) {
	l := &loader{}
	root, err := l.node(v, value.Root())
	if err != nil {
		return nil, err
	}
	return &Document{Root: root, Defs: root.Meta().Defs, Warnings: l.warnings}, nil
}

// DocumentError reports a structurally malformed schema document.
type DocumentError struct {
	Path string
	Msg  string
}

func (e *DocumentError) Error() string { return fmt.Sprintf("schema: %s at %s", e.Msg, e.Path) }

type loader struct {
	warnings []string
}

func (l *loader) warnf(p value.Path, f string, a ...any) {
	l.warnings = append(l.warnings, p.Pointer()+": "+fmt.Sprintf(f, a...))
}

func (l *loader) node(v value.Value, p value.Path) (Node, error) {
	obj, ok := v.(*value.Object)
	if !ok {
		// boolean schemas and other shorthands are outside the subset
		if v.Kind() == value.KindBool {
			l.warnf(p, "boolean schema treated as unsupported")
			return &Unsupported{Type: "boolean-schema"}, nil
		}
		return nil, &DocumentError{Path: p.Pointer(), Msg: "schema must be an object, got " + v.Kind().String()}
	}

	var c Common
	c.Title = l.stringKeyword(obj, "title", p)
	c.Description = l.stringKeyword(obj, "description", p)
	defs, err := l.defs(obj, p)
	if err != nil {
		return nil, err
	}
	c.Defs = defs

	if raw, ok := obj.Get("$ref"); ok {
		prim, _ := raw.(*value.Primitive)
		s, isStr := prim.Str()
		if !isStr {
			return nil, &DocumentError{Path: p.Key("$ref").Pointer(), Msg: "$ref must be a string"}
		}
		return &Ref{Common: c, Ref: s}, nil
	}

	typeName := l.stringKeyword(obj, "type", p)
	kind, known := kindFromType(typeName)
	if !known {
		if raw, ok := obj.Get("type"); ok && raw.Kind() != value.KindString {
			l.warnf(p, "non-string type keyword treated as unsupported")
		}
		return &Unsupported{Common: c, Type: typeName}, nil
	}

	switch kind {
	case KindObject:
		return l.object(obj, c, p)
	case KindArray:
		arr := &Array{Common: c, Items: &Unsupported{}}
		if raw, ok := obj.Get("items"); ok {
			items, err := l.node(raw, p.Key("items"))
			if err != nil {
				return nil, err
			}
			arr.Items = items
		}
		return arr, nil
	default:
		return &Primitive{Common: c, Type: kind}, nil
	}
}

func (l *loader) object(obj *value.Object, c Common, p value.Path) (Node, error) {
	o := &Object{Common: c}
	if raw, ok := obj.Get("properties"); ok {
		props, isObj := raw.(*value.Object)
		if !isObj {
			return nil, &DocumentError{Path: p.Key("properties").Pointer(), Msg: "properties must be an object"}
		}
		var err error
		props.Range(func(name string, sv value.Value) bool {
			var n Node
			n, err = l.node(sv, p.Key("properties").Key(name))
			if err != nil {
				return false
			}
			o.Properties = append(o.Properties, Property{Name: name, Schema: n})
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	if raw, ok := obj.Get("required"); ok {
		req, isArr := raw.(*value.Array)
		if !isArr {
			return nil, &DocumentError{Path: p.Key("required").Pointer(), Msg: "required must be an array"}
		}
		for i, it := range req.Items() {
			prim, _ := it.(*value.Primitive)
			s, ok := prim.Str()
			if !ok {
				return nil, &DocumentError{Path: p.Key("required").Index(i).Pointer(), Msg: "required entries must be strings"}
			}
			if _, declared := o.Property(s); !declared {
				l.warnf(p, "required property %q is not declared", s)
			}
			o.Required = append(o.Required, s)
		}
	}
	return o, nil
}

func (l *loader) defs(obj *value.Object, p value.Path) (*Defs, error) {
	raw, ok := obj.Get("$defs")
	if !ok {
		return nil, nil
	}
	m, isObj := raw.(*value.Object)
	if !isObj {
		return nil, &DocumentError{Path: p.Key("$defs").Pointer(), Msg: "$defs must be an object"}
	}
	entries := make(map[string]Node, m.Len())
	var err error
	m.Range(func(name string, sv value.Value) bool {
		var n Node
		n, err = l.node(sv, p.Key("$defs").Key(name))
		if err != nil {
			return false
		}
		entries[name] = n
		return true
	})
	if err != nil {
		return nil, err
	}
	return NewDefs(entries), nil
}

func (l *loader) stringKeyword(obj *value.Object, key string, p value.Path) string {
	raw, ok := obj.Get(key)
	if !ok {
		return ""
	}
	prim, _ := raw.(*value.Primitive)
	s, isStr := prim.Str()
	if !isStr {
		if key != "type" {
			l.warnf(p, "%s must be a string", key)
		}
		return ""
	}
	return s
}
