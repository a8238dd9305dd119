package value

import (
	"fmt"
	"sort"
	"strconv"

	j "github.com/goccy/go-json"
)

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Primitive:
		if t == nil {
			return Null()
		}
		c := *t
		return &c
	case *Object:
		o := &Object{keys: append([]string(nil), t.keys...), vals: make(map[string]Value, len(t.vals))}
		for k, vv := range t.vals {
			o.vals[k] = Clone(vv)
		}
		return o
	case *Array:
		a := &Array{items: make([]Value, len(t.items))}
		for i, it := range t.items {
			a.items[i] = Clone(it)
		}
		return a
	default:
		return Null()
	}
}

// Equal reports whether a and b hold the same data. Object key order is not
// significant; numbers compare by numeric value.
func Equal(a, b Value) bool {
	if kindOf(a) != kindOf(b) {
		return false
	}
	switch ta := a.(type) {
	case *Object:
		tb := b.(*Object)
		if ta.Len() != tb.Len() {
			return false
		}
		for k, va := range ta.vals {
			vb, ok := tb.vals[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case *Array:
		tb := b.(*Array)
		if ta.Len() != tb.Len() {
			return false
		}
		for i := range ta.items {
			if !Equal(ta.items[i], tb.items[i]) {
				return false
			}
		}
		return true
	default:
		pa, _ := a.(*Primitive)
		pb, _ := b.(*Primitive)
		if pa.Kind() == KindNumber {
			fa, _ := pa.Float64()
			fb, _ := pb.Float64()
			return fa == fb
		}
		return pa.Text() == pb.Text()
	}
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// FromAny converts plain Go data (as produced by JSON or YAML decoders) into a
// Value. Map keys are sorted because Go maps carry no order.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return NumberText(strconv.FormatUint(t, 10))
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case j.Number:
		return NumberText(string(t))
	case fmt.Stringer:
		if n, ok := x.(interface{ Float64() (float64, error) }); ok {
			if _, err := n.Float64(); err == nil {
				return NumberText(t.String())
			}
		}
		return nil, fmt.Errorf("value: unsupported type %T", x)
	case []any:
		a := NewArray()
		for _, it := range t {
			v, err := FromAny(it)
			if err != nil {
				return nil, err
			}
			a.Append(v)
		}
		return a, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := NewObject()
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return nil, err
			}
			o.Set(k, v)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("value: unsupported type %T", x)
	}
}

// MustFromAny is FromAny for literals known to be convertible.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}
