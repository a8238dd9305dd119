package value

import (
	"bytes"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/skemaform/internal/engine"
)

// SyntaxError reports malformed input.
type SyntaxError struct{ Msg string }

func (e *SyntaxError) Error() string { return "value: " + e.Msg }

// DecodeOpt bundles decoding options.
type DecodeOpt struct {
	// RejectDuplicateKeys fails decoding when an object repeats a key. When
	// false the last occurrence wins and keeps the first position.
	RejectDuplicateKeys bool
	// MaxDepth bounds container nesting; 0 selects DefaultMaxDepth.
	MaxDepth int
}

// DefaultMaxDepth is the nesting bound applied when DecodeOpt.MaxDepth is 0.
const DefaultMaxDepth = 512

// Unmarshal decodes JSON into a Value tree preserving object key order.
func Unmarshal(data []byte, opts ...DecodeOpt) (Value, error) {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth == 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	dup := eng.DupIgnore
	if opt.RejectDuplicateKeys {
		dup = eng.DupError
	}
	src := eng.WrapWithEnforcement(eng.NewBytes(data), eng.EnforceOptions{OnDuplicate: dup, MaxDepth: opt.MaxDepth})
	return eng.Decode[Value](src, treeBuilder{})
}

// treeBuilder plugs Value construction into the token decoder.
type treeBuilder struct{}

func (treeBuilder) Null() Value             { return Null() }
func (treeBuilder) String(s string) Value   { return String(s) }
func (treeBuilder) Bool(b bool) Value       { return Bool(b) }
func (treeBuilder) Array(vals []Value) Value { return NewArray(vals...) }

func (treeBuilder) Number(text string) (Value, error) {
	p, err := NumberText(text)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (treeBuilder) Object(keys []string, vals []Value) Value {
	o := NewObject()
	for i, k := range keys {
		o.Set(k, vals[i])
	}
	return o
}

// Marshal encodes v as compact JSON, emitting object keys in order.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is like Marshal but applies indentation.
func MarshalIndent(v Value, prefix, indent string) ([]byte, error) {
	b, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := j.Indent(&buf, b, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case *Primitive:
		switch t.Kind() {
		case KindNull:
			buf.WriteString("null")
		case KindString:
			b, err := j.Marshal(t.text)
			if err != nil {
				return err
			}
			buf.Write(b)
		default:
			buf.WriteString(t.text)
		}
	case *Object:
		buf.WriteByte('{')
		for i, k := range t.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := j.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encode(buf, t.vals[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *Array:
		buf.WriteByte('[')
		for i, it := range t.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, it); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	return nil
}

// MarshalJSON lets primitives embed in structures encoded by json packages.
func (p *Primitive) MarshalJSON() ([]byte, error) { return Marshal(p) }

// MarshalJSON encodes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) { return Marshal(o) }

// MarshalJSON encodes the array.
func (a *Array) MarshalJSON() ([]byte, error) { return Marshal(a) }
