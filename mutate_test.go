package skemaform_test

import (
	"errors"
	"testing"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/value"
)

func newEngine(t *testing.T, src string, changes *[]skemaform.Change) (*skemaform.Engine, value.Value) {
	t.Helper()
	doc := mustDoc(t, src)
	e := skemaform.NewEngine(doc.Root, doc.Defs, skemaform.WithOnChange(func(c skemaform.Change) {
		if changes != nil {
			*changes = append(*changes, c)
		}
	}))
	root, iss := e.Synthesize()
	if len(iss) != 0 {
		t.Fatalf("synthesis issues: %v", iss)
	}
	return e, root
}

func TestEngine_Scenario(t *testing.T) {
	var changes []skemaform.Change
	e, root := newEngine(t, scenarioSchema, &changes)

	root = e.InsertArrayItem(root, value.Root().Key("b"))
	if got := mustJSON(t, root); got != `{"a":null,"b":[null]}` {
		t.Fatalf("after insert: %s", got)
	}
	root, err := e.SetPrimitive(root, value.Root().Key("a"), value.String("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if got := mustJSON(t, root); got != `{"a":"hello","b":[null]}` {
		t.Fatalf("after set: %s", got)
	}
	if len(changes) != 2 {
		t.Fatalf("expected one change per edit, got %d", len(changes))
	}
	if changes[0].Op != skemaform.OpInsertArrayItem || changes[0].Path.Pointer() != "/b" {
		t.Fatalf("first change = %+v", changes[0])
	}
	if changes[1].Root != root {
		t.Fatal("change must carry the committed root")
	}
}

func TestEngine_InsertThenRemoveRestoresArray(t *testing.T) {
	e, root := newEngine(t, `{"type":"array","items":{"type":"string"}}`, nil)
	for _, s := range []string{"x", "y", "z"} {
		root = e.InsertArrayItem(root, value.Root())
		var err error
		root, err = e.SetPrimitive(root, value.Root().Index(root.(*value.Array).Len()-1), value.String(s))
		if err != nil {
			t.Fatal(err)
		}
	}
	before := mustJSON(t, root)
	root = e.InsertArrayItem(root, value.Root())
	root = e.RemoveArrayItem(root, value.Root(), 3)
	if got := mustJSON(t, root); got != before {
		t.Fatalf("got %s want %s", got, before)
	}
	root = e.MoveArrayItem(root, value.Root(), 0, 2)
	if got := mustJSON(t, root); got != `["y","z","x"]` {
		t.Fatalf("after move: %s", got)
	}
}

func TestEngine_RemoveOutOfRangeIsNoop(t *testing.T) {
	var changes []skemaform.Change
	e, root := newEngine(t, scenarioSchema, &changes)
	root = e.RemoveArrayItem(root, value.Root().Key("b"), 5)
	root = e.MoveArrayItem(root, value.Root().Key("b"), 0, 1)
	if got := mustJSON(t, root); got != `{"a":null,"b":[]}` {
		t.Fatalf("got %s", got)
	}
	if len(changes) != 0 {
		t.Fatalf("no-op edits must not commit, got %d", len(changes))
	}
}

func TestEngine_SetObjectProperty(t *testing.T) {
	e, root := newEngine(t, `{"type":"object","properties":{"z":{"type":"string"},"a":{"type":"string"},"m":{"type":"object","properties":{"k":{"type":"string"}}}}}`, nil)

	root = e.SetObjectProperty(root, value.Root(), "a", value.String("v"))
	got, _ := value.Lookup(root, value.Root().Key("a"))
	if !value.Equal(got, value.String("v")) {
		t.Fatalf("root.a = %v", got)
	}
	if keys := root.(*value.Object).Keys(); keys[0] != "z" || keys[1] != "a" {
		t.Fatalf("overwrite must keep key position, got %v", keys)
	}

	// a null object slot is coerced before the set
	root = e.SetObjectProperty(root, value.Root(), "m", value.Null())
	root = e.SetObjectProperty(root, value.Root().Key("m"), "k", value.String("deep"))
	if got := mustJSON(t, root); got != `{"z":null,"a":"v","m":{"k":"deep"}}` {
		t.Fatalf("got %s", got)
	}
}

func TestEngine_CoercesMissingIntermediates(t *testing.T) {
	e, _ := newEngine(t, `{"type":"object","properties":{"o":{"type":"object","properties":{"tags":{"type":"array","items":{"type":"string"}},"name":{"type":"string"}}}}}`, nil)
	root := value.Value(value.NewObject())
	root = e.InsertArrayItem(root, value.Root().Key("o").Key("tags"))
	if got := mustJSON(t, root); got != `{"o":{"tags":[null],"name":null}}` {
		t.Fatalf("got %s", got)
	}
}

func TestEngine_InsertObjectAndUnresolvedItems(t *testing.T) {
	e, root := newEngine(t, `{"type":"object","properties":{
	  "people":{"type":"array","items":{"$ref":"#/$defs/Person"}},
	  "ghosts":{"type":"array","items":{"$ref":"#/$defs/Ghost"}}},
	  "$defs":{"Person":{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"integer"}}}}}`, nil)

	root = e.InsertArrayItem(root, value.Root().Key("people"))
	root = e.InsertArrayItem(root, value.Root().Key("ghosts"))
	if got := mustJSON(t, root); got != `{"people":[{"name":null,"age":null}],"ghosts":[{}]}` {
		t.Fatalf("got %s", got)
	}

	root, err := e.SetPrimitive(root, value.MustParsePointer("/people/0/age"), value.Int(42))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.SetPrimitive(root, value.MustParsePointer("/people/0/age"), value.Number(1.5)); !errors.Is(err, skemaform.ErrPathTypeMismatch) {
		t.Fatalf("integer slot must reject 1.5, got %v", err)
	}
}

func TestEngine_SetPrimitiveMismatchLeavesTreeUnchanged(t *testing.T) {
	var changes []skemaform.Change
	e, root := newEngine(t, scenarioSchema, &changes)
	before := mustJSON(t, root)

	cases := map[string]struct {
		path value.Path
		v    *value.Primitive
	}{
		"array target":        {value.Root().Key("b"), value.String("x")},
		"wrong kind":          {value.Root().Key("a"), value.Bool(true)},
		"index out of range":  {value.MustParsePointer("/b/3"), value.String("x")},
		"through a primitive": {value.MustParsePointer("/a/x"), value.String("x")},
		"undeclared key":      {value.Root().Key("zzz"), value.String("x")},
	}
	for name, tc := range cases {
		out, err := e.SetPrimitive(root, tc.path, tc.v)
		var me *skemaform.MismatchError
		if !errors.As(err, &me) || !errors.Is(err, skemaform.ErrPathTypeMismatch) {
			t.Fatalf("%s: expected mismatch, got %v", name, err)
		}
		if out != root || mustJSON(t, root) != before {
			t.Fatalf("%s: tree changed", name)
		}
		if me.Issue().Code != skemaform.CodePathTypeMismatch {
			t.Fatalf("%s: issue code %q", name, me.Issue().Code)
		}
	}
	if len(changes) != 0 {
		t.Fatalf("failed edits must not commit, got %d", len(changes))
	}
}

func TestEngine_UndeclaredKeysAreNotCreated(t *testing.T) {
	var changes []skemaform.Change
	e, root := newEngine(t, `{"type":"object","properties":{"o":{"type":"object","properties":{"tags":{"type":"array","items":{"type":"string"}}}}}}`, &changes)
	before := mustJSON(t, root)

	if _, err := e.SetPrimitive(root, value.MustParsePointer("/o/extra"), value.String("x")); !errors.Is(err, skemaform.ErrPathTypeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	root = e.InsertArrayItem(root, value.MustParsePointer("/ghost/tags"))
	if got := mustJSON(t, root); got != before {
		t.Fatalf("tree changed: %s", got)
	}
	if len(changes) != 0 {
		t.Fatalf("no-op edits must not commit, got %d", len(changes))
	}

	// an undeclared key that is already stored can still be edited
	root = e.SetObjectProperty(root, value.Root(), "extra", value.String("kept"))
	root, err := e.SetPrimitive(root, value.Root().Key("extra"), value.String("edited"))
	if err != nil {
		t.Fatal(err)
	}
	if got := mustJSON(t, root); got != `{"o":{"tags":[]},"extra":"edited"}` {
		t.Fatalf("got %s", got)
	}
}

func TestEngine_FailedCoercionIsNotAttached(t *testing.T) {
	e, _ := newEngine(t, `{"type":"object","properties":{"o":{"type":"object","properties":{"s":{"type":"string"}}}}}`, nil)
	root := value.Value(value.NewObject())
	if _, err := e.SetPrimitive(root, value.MustParsePointer("/o/s"), value.Int(1)); err == nil {
		t.Fatal("expected mismatch")
	}
	if got := mustJSON(t, root); got != `{}` {
		t.Fatalf("coerced containers leaked into the tree: %s", got)
	}
}

func TestEngine_ReplaceRoot(t *testing.T) {
	e, root := newEngine(t, `{"type":"number"}`, nil)
	out, err := e.SetPrimitive(root, value.Root(), value.Number(2.5))
	if err != nil {
		t.Fatal(err)
	}
	if got := mustJSON(t, out); got != `2.5` {
		t.Fatalf("got %s", got)
	}
}
