// Package value holds the in-memory tree edited against a schema.
//
// A tree is built from three node types: *Primitive (null, string, number,
// boolean), *Object (ordered key/value pairs) and *Array (ordered elements).
// Containers are mutated in place so that a node keeps its identity across
// edits; Clone produces an independent snapshot.
package value

import (
	"math"
	"strconv"
)

// Kind identifies the runtime shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a node of the edited tree. The set of implementations is closed.
type Value interface {
	Kind() Kind
	isValue()
}

// Primitive is a leaf: null, string, number or boolean. Numbers keep their
// JSON text so values round-trip without precision loss.
type Primitive struct {
	kind Kind
	text string
}

func (*Primitive) isValue() {}

// Kind reports the primitive kind; a nil *Primitive is null.
func (p *Primitive) Kind() Kind {
	if p == nil {
		return KindNull
	}
	return p.kind
}

// Null returns the explicit "unset" sentinel.
func Null() *Primitive { return &Primitive{kind: KindNull} }

// String returns a string primitive.
func String(s string) *Primitive { return &Primitive{kind: KindString, text: s} }

// Bool returns a boolean primitive.
func Bool(b bool) *Primitive { return &Primitive{kind: KindBool, text: strconv.FormatBool(b)} }

// Int returns an integral number primitive.
func Int(i int64) *Primitive { return &Primitive{kind: KindNumber, text: strconv.FormatInt(i, 10)} }

// Number returns a number primitive. NaN and infinities have no JSON form
// and are stored as null.
func Number(f float64) *Primitive {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return &Primitive{kind: KindNumber, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// NumberText returns a number primitive from its JSON text.
func NumberText(text string) (*Primitive, error) {
	if !validNumber(text) {
		return nil, &SyntaxError{Msg: "invalid number " + strconv.Quote(text)}
	}
	return &Primitive{kind: KindNumber, text: text}, nil
}

// validNumber checks text against the JSON number grammar.
func validNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := func() int {
		n := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			n++
		}
		return n
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case digits() == 0:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		if digits() == 0 {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(s)
}

// IsNull reports whether the primitive is the null sentinel.
func (p *Primitive) IsNull() bool { return p.Kind() == KindNull }

// Str returns the string payload.
func (p *Primitive) Str() (string, bool) {
	if p.Kind() != KindString {
		return "", false
	}
	return p.text, true
}

// Text returns the JSON text of a number, or the payload of a string.
func (p *Primitive) Text() string {
	if p == nil {
		return ""
	}
	return p.text
}

// Float64 returns the numeric payload.
func (p *Primitive) Float64() (float64, bool) {
	if p.Kind() != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(p.text, 64)
	return f, err == nil
}

// Int64 returns the numeric payload when it is integral.
func (p *Primitive) Int64() (int64, bool) {
	if p.Kind() != KindNumber {
		return 0, false
	}
	if i, err := strconv.ParseInt(p.text, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(p.text, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// IsIntegral reports whether the primitive is a number without a fractional part.
func (p *Primitive) IsIntegral() bool {
	_, ok := p.Int64()
	return ok
}

// BoolValue returns the boolean payload.
func (p *Primitive) BoolValue() (bool, bool) {
	if p.Kind() != KindBool {
		return false, false
	}
	return p.text == "true", true
}

// Interface returns the payload as a plain Go value (nil, string, float64, bool).
func (p *Primitive) Interface() any {
	switch p.Kind() {
	case KindString:
		return p.text
	case KindNumber:
		f, _ := p.Float64()
		return f
	case KindBool:
		b, _ := p.BoolValue()
		return b
	default:
		return nil
	}
}

// Object is an ordered mapping from key to Value.
type Object struct {
	keys []string
	vals map[string]Value
}

func (*Object) isValue()   {}
func (*Object) Kind() Kind { return KindObject }

// NewObject returns an empty object.
func NewObject() *Object { return &Object{vals: map[string]Value{}} }

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string { return append([]string(nil), o.keys...) }

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// Set stores v under key. Existing keys keep their position; new keys are
// appended. A nil v is stored as null.
func (o *Object) Set(key string, v Value) {
	if v == nil {
		v = Null()
	}
	if o.vals == nil {
		o.vals = map[string]Value{}
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.vals[key]; !ok {
		return false
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Range calls fn for each entry in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.vals[k]) {
			return
		}
	}
}

// Array is an ordered sequence of Values.
type Array struct {
	items []Value
}

func (*Array) isValue()   {}
func (*Array) Kind() Kind { return KindArray }

// NewArray returns an array holding items; nil items are stored as null.
func NewArray(items ...Value) *Array {
	a := &Array{items: make([]Value, 0, len(items))}
	for _, it := range items {
		a.Append(it)
	}
	return a
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// Items returns a copy of the element slice.
func (a *Array) Items() []Value { return append([]Value(nil), a.items...) }

// At returns the element at index i.
func (a *Array) At(i int) (Value, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

// Replace stores v at index i and reports whether i was in range.
func (a *Array) Replace(i int, v Value) bool {
	if i < 0 || i >= len(a.items) {
		return false
	}
	if v == nil {
		v = Null()
	}
	a.items[i] = v
	return true
}

// Append adds v at the end and returns its index.
func (a *Array) Append(v Value) int {
	if v == nil {
		v = Null()
	}
	a.items = append(a.items, v)
	return len(a.items) - 1
}

// Remove deletes the element at index i and reports whether i was in range.
func (a *Array) Remove(i int) bool {
	if i < 0 || i >= len(a.items) {
		return false
	}
	copy(a.items[i:], a.items[i+1:])
	a.items[len(a.items)-1] = nil
	a.items = a.items[:len(a.items)-1]
	return true
}

// Move relocates the element at from so that it ends up at index to,
// shifting the elements in between. It reports whether both indices were in range.
func (a *Array) Move(from, to int) bool {
	n := len(a.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	v := a.items[from]
	if from < to {
		copy(a.items[from:to], a.items[from+1:to+1])
	} else {
		copy(a.items[to+1:from+1], a.items[to:from])
	}
	a.items[to] = v
	return true
}
