package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const personJSON = `{
  "title": "person",
  "type": "object",
  "properties": {
    "zeta": {"type": "string", "title": "Zeta"},
    "alpha": {"type": "integer"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "home": {"$ref": "#/$defs/Address"},
    "blob": {"type": "binary"}
  },
  "required": ["zeta", "ghost"],
  "$defs": {
    "Address": {"type": "object", "properties": {"city": {"type": "string"}}}
  }
}`

const personYAML = `
title: person
type: object
properties:
  zeta: {type: string, title: Zeta}
  alpha: {type: integer}
  tags:
    type: array
    items: {type: string}
  home: {$ref: "#/$defs/Address"}
  blob: {type: binary}
required: [zeta, ghost]
$defs:
  Address:
    type: object
    properties:
      city: {type: string}
`

func TestParse_OrderedProperties(t *testing.T) {
	for name, src := range map[string]string{"json": personJSON, "yaml": personYAML} {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(src))
			if err != nil {
				t.Fatal(err)
			}
			if doc.Title() != "person" {
				t.Fatalf("title = %q", doc.Title())
			}
			obj, ok := doc.Root.(*Object)
			if !ok {
				t.Fatalf("root is %T", doc.Root)
			}
			if diff := cmp.Diff([]string{"zeta", "alpha", "tags", "home", "blob"}, obj.PropertyNames()); diff != "" {
				t.Fatalf("order (-want +got):\n%s", diff)
			}
			if !obj.IsRequired("zeta") || obj.IsRequired("alpha") {
				t.Fatal("required set mismatch")
			}
			if len(doc.Warnings) != 1 {
				t.Fatalf("expected one warning for undeclared required, got %v", doc.Warnings)
			}

			zeta, _ := obj.Property("zeta")
			if zeta.Kind() != KindString || zeta.Meta().Title != "Zeta" {
				t.Fatalf("zeta = %#v", zeta)
			}
			tags, _ := obj.Property("tags")
			if arr, ok := tags.(*Array); !ok || arr.Items.Kind() != KindString {
				t.Fatalf("tags = %#v", tags)
			}
			blob, _ := obj.Property("blob")
			if u, ok := blob.(*Unsupported); !ok || u.Type != "binary" {
				t.Fatalf("blob = %#v", blob)
			}
			home, _ := obj.Property("home")
			resolved, err := Resolve(home, doc.Defs)
			if err != nil {
				t.Fatal(err)
			}
			if resolved.Kind() != KindObject {
				t.Fatalf("home resolved to %v", resolved.Kind())
			}
		})
	}
}

func TestParse_RefWinsOverType(t *testing.T) {
	doc, err := ParseJSON([]byte(`{"type":"string","$ref":"#/$defs/x"}`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Root.Kind() != KindRef {
		t.Fatalf("expected ref, got %v", doc.Root.Kind())
	}
}

func TestParse_ArrayWithoutItems(t *testing.T) {
	doc, err := ParseJSON([]byte(`{"type":"array"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Root.(*Array).Items.Kind(); got != KindUnsupported {
		t.Fatalf("items kind = %v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"duplicate key":      `{"type":"object","type":"string"}`,
		"non-object schema":  `{"type":"object","properties":{"a":1}}`,
		"ref not string":     `{"$ref":3}`,
		"properties array":   `{"type":"object","properties":[]}`,
		"required not array": `{"type":"object","required":"a"}`,
		"yaml duplicate":     "type: object\ntype: string\n",
	}
	for name, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	var de *DocumentError
	if _, err := ParseJSON([]byte(`{"$ref":3}`)); !errors.As(err, &de) || de.Path != "/$ref" {
		t.Fatalf("expected DocumentError at /$ref, got %v", err)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	src := `{"type":"array","items":{"type":"array","items":{"type":"string"}}}`
	if _, err := ParseJSON([]byte(src), LoadOpt{MaxDepth: 2}); err == nil {
		t.Fatal("expected depth error")
	}
	if _, err := ParseJSON([]byte(src)); err != nil {
		t.Fatal(err)
	}
}

func TestParseYAMLBundle(t *testing.T) {
	src := "title: one\ntype: string\n---\n---\ntitle: two\ntype: object\nproperties:\n  b: {type: boolean}\n  a: {type: number}\n"
	docs, err := ParseYAMLBundle([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].Name != "one" || docs[1].Name != "two" {
		t.Fatalf("docs = %+v", docs)
	}
	if diff := cmp.Diff([]string{"b", "a"}, docs[1].Root.(*Object).PropertyNames()); diff != "" {
		t.Fatal(diff)
	}
}
