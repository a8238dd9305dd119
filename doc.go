package skemaform

// Package skemaform edits structured values whose shape is defined by a JSON
// Schema document, keeping the value conformant to the schema as it changes.
//
// - schema/ loads documents and resolves $ref/$defs indirection
// - value/ is the ordered value tree with JSON encoding and JSON Pointer paths
// - Walker classifies resolved schema nodes into FieldSpec, ObjectSpec,
//   ArraySpec and UnsupportedSpec
// - Synthesize builds default values; reference failures stay local to the
//   subtree they occur in and are reported as Issues
// - Engine applies point edits (set primitive, set property, insert, remove
//   and move array items) with a single commit hook per edit
// - Session ties an Engine to a SchemaProvider and a ValueStore
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Collaborator adapters live under store/, the CLI under cmd/skemaform.
//
// Typical usage:
//
//  doc, err := schema.ParseJSON(data)
//  e := skemaform.NewEngine(doc.Root, doc.Defs)
//  root, issues := e.Synthesize()
//  root = e.InsertArrayItem(root, value.Root().Key("tags"))
//  root, err = e.SetPrimitive(root, value.Root().Key("name"), value.String("x"))
