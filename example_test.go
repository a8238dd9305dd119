package skemaform_test

import (
	"fmt"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

func ExampleEngine() {
	doc, err := schema.ParseJSON([]byte(`{
	  "type": "object",
	  "properties": {
	    "a": {"type": "string"},
	    "b": {"type": "array", "items": {"type": "string"}}
	  }
	}`))
	if err != nil {
		panic(err)
	}
	e := skemaform.NewEngine(doc.Root, doc.Defs, skemaform.WithOnChange(func(c skemaform.Change) {
		fmt.Println("commit", c.Op, c.Path)
	}))

	root, _ := e.Synthesize()
	root = e.InsertArrayItem(root, value.Root().Key("b"))
	root, _ = e.SetPrimitive(root, value.Root().Key("a"), value.String("hello"))

	out, _ := value.Marshal(root)
	fmt.Println(string(out))
	// Output:
	// commit insert_array_item /b
	// commit set_primitive /a
	// {"a":"hello","b":[null]}
}
