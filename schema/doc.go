// Package schema loads the JSON Schema subset understood by skemaform and
// resolves $ref indirection.
//
// Documents load from JSON or YAML into a closed set of node types
// (*Primitive, *Object, *Array, *Ref, *Unsupported). Object properties keep
// the order in which the document declares them. Definitions live in
// immutable *Defs registries; MergeDefs layers a node's local $defs over an
// ambient registry with local entries winning.
//
//	doc, err := schema.ParseJSON(data)
//	n, err := schema.Resolve(doc.Root, doc.Defs)
package schema
