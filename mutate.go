package skemaform

import (
	"errors"

	"github.com/reoring/skemaform/internal/logging"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

// Op names an edit operation.
type Op string

const (
	OpSetPrimitive      Op = "set_primitive"
	OpSetObjectProperty Op = "set_object_property"
	OpInsertArrayItem   Op = "insert_array_item"
	OpRemoveArrayItem   Op = "remove_array_item"
	OpMoveArrayItem     Op = "move_array_item"
)

// Change is delivered once per successful edit. Path locates the edited
// container or primitive; Root is the value tree after the edit.
type Change struct {
	Op   Op
	Path value.Path
	Root value.Value
}

// Engine applies point edits to a value tree bound to a schema. Edits are
// made in place where the tree already has the right shape; the returned root
// differs from the argument only when the root itself was replaced.
type Engine struct {
	walker   *Walker
	schema   schema.Node
	defs     *schema.Defs
	onChange func(Change)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWalker sets the Walker used for navigation and item synthesis.
func WithWalker(w *Walker) EngineOption { return func(e *Engine) { e.walker = w } }

// WithOnChange registers the commit hook.
func WithOnChange(fn func(Change)) EngineOption { return func(e *Engine) { e.onChange = fn } }

// NewEngine binds an Engine to a schema root and its ambient definitions.
func NewEngine(root schema.Node, defs *schema.Defs, opts ...EngineOption) *Engine {
	e := &Engine{schema: root, defs: defs}
	for _, o := range opts {
		o(e)
	}
	if e.walker == nil {
		e.walker = NewWalker(nil)
	}
	return e
}

// Synthesize returns the default value for the bound schema.
func (e *Engine) Synthesize() (value.Value, Issues) { return e.walker.Synthesize(e.schema, e.defs) }

// SetPrimitive replaces the primitive at path with v. The target must be a
// primitive and v must be null or match the declared kind. A key the object
// schema does not declare is never created. Otherwise a *MismatchError is
// returned and the tree is left unchanged.
func (e *Engine) SetPrimitive(root value.Value, path value.Path, v *value.Primitive) (value.Value, error) {
	if v == nil {
		v = value.Null()
	}
	out, err := e.apply(root, path, func(cur value.Value, spec Spec, at value.Path) (value.Value, error) {
		if _, ok := cur.(*value.Primitive); !ok {
			return nil, &MismatchError{Path: at.Pointer(), Expected: "primitive", Got: kindName(cur)}
		}
		if err := checkPrimitive(spec, v, at); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		if errors.Is(err, errNoop) {
			err = &MismatchError{Path: path.Pointer(), Expected: "existing path", Got: "missing"}
		}
		return root, err
	}
	e.commit(OpSetPrimitive, path, out)
	return out, nil
}

// SetObjectProperty sets key to v in the object at path. A target that is not
// an object is replaced by a fresh empty object first.
func (e *Engine) SetObjectProperty(root value.Value, path value.Path, key string, v value.Value) value.Value {
	if v == nil {
		v = value.Null()
	}
	return e.applyStructural(OpSetObjectProperty, root, path, func(cur value.Value, _ Spec, _ value.Path) (value.Value, error) {
		obj, ok := cur.(*value.Object)
		if !ok {
			obj = value.NewObject()
		}
		obj.Set(key, v)
		return obj, nil
	})
}

// InsertArrayItem appends a synthesized element to the array at path. A
// target that is not an array is replaced by a fresh empty array first.
// Object items are synthesized with their declared keys; an item schema whose
// reference cannot be found yields an empty object.
func (e *Engine) InsertArrayItem(root value.Value, path value.Path) value.Value {
	return e.applyStructural(OpInsertArrayItem, root, path, func(cur value.Value, spec Spec, at value.Path) (value.Value, error) {
		arr, ok := cur.(*value.Array)
		if !ok {
			arr = value.NewArray()
		}
		var item value.Value = value.Null()
		if as, ok := spec.(ArraySpec); ok {
			item = e.synthesizeItem(as, at.Index(arr.Len()))
		}
		arr.Append(item)
		return arr, nil
	})
}

// RemoveArrayItem deletes element index from the array at path. An
// out-of-range index, or a target that is not an array, is a no-op.
func (e *Engine) RemoveArrayItem(root value.Value, path value.Path, index int) value.Value {
	return e.applyStructural(OpRemoveArrayItem, root, path, func(cur value.Value, _ Spec, _ value.Path) (value.Value, error) {
		arr, ok := cur.(*value.Array)
		if !ok || !arr.Remove(index) {
			return nil, errNoop
		}
		return arr, nil
	})
}

// MoveArrayItem moves element from to position to in the array at path.
// Out-of-range indices are a no-op.
func (e *Engine) MoveArrayItem(root value.Value, path value.Path, from, to int) value.Value {
	return e.applyStructural(OpMoveArrayItem, root, path, func(cur value.Value, _ Spec, _ value.Path) (value.Value, error) {
		arr, ok := cur.(*value.Array)
		if !ok || !arr.Move(from, to) {
			return nil, errNoop
		}
		return arr, nil
	})
}

func (e *Engine) synthesizeItem(spec ArraySpec, at value.Path) value.Value {
	if _, err := e.walker.Dispatch(spec.Items, spec.Defs); errors.Is(err, schema.ErrUnresolvedReference) {
		return value.NewObject()
	}
	v, iss := e.walker.synthesizeAt(spec.Items, spec.Defs, at)
	for _, it := range iss {
		logging.Debug().Str("path", it.Path).Str("code", it.Code).Msg("array item synthesis contained a failure")
	}
	return v
}

// errNoop marks an edit that leaves the tree as it is without being an error
// for the caller.
var errNoop = errors.New("no-op edit")

type leafFunc func(cur value.Value, spec Spec, at value.Path) (value.Value, error)

func (e *Engine) applyStructural(op Op, root value.Value, path value.Path, leaf leafFunc) value.Value {
	out, err := e.apply(root, path, leaf)
	if err != nil {
		logging.Debug().Str("op", string(op)).Str("path", path.Pointer()).Err(err).Msg("edit left the value unchanged")
		return root
	}
	e.commit(op, path, out)
	return out
}

func (e *Engine) commit(op Op, path value.Path, root value.Value) {
	if e.onChange != nil {
		e.onChange(Change{Op: op, Path: append(value.Path(nil), path...), Root: root})
	}
}

// apply navigates root along path, following the schema, and runs leaf on
// the target. Missing or mistyped containers on the way are replaced by
// synthesized ones; replacements are attached only once leaf succeeds.
func (e *Engine) apply(root value.Value, path value.Path, leaf leafFunc) (value.Value, error) {
	if root == nil {
		root = value.Null()
	}
	return e.descend(root, e.schema, e.defs, path, 0, leaf)
}

func (e *Engine) descend(cur value.Value, node schema.Node, defs *schema.Defs, path value.Path, i int, leaf leafFunc) (value.Value, error) {
	at := path[:i]
	spec, err := e.walker.Dispatch(node, defs)
	if err != nil {
		logging.Debug().Str("path", at.Pointer()).Err(err).Msg("navigating through an unresolved schema")
		spec = UnsupportedSpec{}
	}
	if i == len(path) {
		return leaf(cur, spec, at)
	}
	tok := path[i]

	switch spec := spec.(type) {
	case ObjectSpec:
		obj, ok := cur.(*value.Object)
		if !ok {
			fresh, _ := e.walker.synthesizeAt(spec.Schema, spec.Defs, at)
			if obj, ok = fresh.(*value.Object); !ok {
				obj = value.NewObject()
			}
		}
		var childSchema schema.Node = &schema.Unsupported{}
		n, declared := spec.Schema.Property(tok)
		if declared {
			childSchema = n
		}
		child, ok := obj.Get(tok)
		if !ok {
			if !declared {
				// only declared keys are created on the way down
				return nil, errNoop
			}
			child, _ = e.walker.synthesizeAt(childSchema, spec.Defs, at.Key(tok))
		}
		next, err := e.descend(child, childSchema, spec.Defs, path, i+1, leaf)
		if err != nil {
			return nil, err
		}
		obj.Set(tok, next)
		return obj, nil

	case ArraySpec:
		arr, ok := cur.(*value.Array)
		if !ok {
			return nil, &MismatchError{Path: at.Pointer(), Expected: "array", Got: kindName(cur)}
		}
		idx, ok := value.AsIndex(tok)
		if !ok {
			return nil, &MismatchError{Path: at.Key(tok).Pointer(), Expected: "array index", Got: tok}
		}
		child, ok := arr.At(idx)
		if !ok {
			return nil, errNoop
		}
		next, err := e.descend(child, spec.Items, spec.Defs, path, i+1, leaf)
		if err != nil {
			return nil, err
		}
		arr.Replace(idx, next)
		return arr, nil

	case UnsupportedSpec:
		// no schema to coerce from: follow the value as it is
		switch c := cur.(type) {
		case *value.Object:
			child, ok := c.Get(tok)
			if !ok {
				return nil, &MismatchError{Path: at.Key(tok).Pointer(), Expected: "existing key", Got: "missing"}
			}
			next, err := e.descend(child, &schema.Unsupported{}, nil, path, i+1, leaf)
			if err != nil {
				return nil, err
			}
			c.Set(tok, next)
			return c, nil
		case *value.Array:
			idx, ok := value.AsIndex(tok)
			if !ok {
				return nil, &MismatchError{Path: at.Key(tok).Pointer(), Expected: "array index", Got: tok}
			}
			child, ok := c.At(idx)
			if !ok {
				return nil, errNoop
			}
			next, err := e.descend(child, &schema.Unsupported{}, nil, path, i+1, leaf)
			if err != nil {
				return nil, err
			}
			c.Replace(idx, next)
			return c, nil
		}
	}
	return nil, &MismatchError{Path: at.Pointer(), Expected: "container", Got: kindName(cur)}
}

// checkPrimitive verifies that v may be stored where spec applies.
func checkPrimitive(spec Spec, v *value.Primitive, at value.Path) error {
	if v.IsNull() {
		return nil
	}
	mismatch := func(expected string) error {
		return &MismatchError{Path: at.Pointer(), Expected: expected, Got: v.Kind().String()}
	}
	switch s := spec.(type) {
	case FieldSpec:
		switch s.Kind {
		case schema.KindString:
			if v.Kind() != value.KindString {
				return mismatch("string")
			}
		case schema.KindNumber:
			if v.Kind() != value.KindNumber {
				return mismatch("number")
			}
		case schema.KindInteger:
			if v.Kind() != value.KindNumber || !v.IsIntegral() {
				return mismatch("integer")
			}
		case schema.KindBoolean:
			if v.Kind() != value.KindBool {
				return mismatch("boolean")
			}
		}
		return nil
	case ObjectSpec:
		return mismatch("object")
	case ArraySpec:
		return mismatch("array")
	}
	return nil
}

func kindName(v value.Value) string {
	if v == nil {
		return "missing"
	}
	return v.Kind().String()
}
