package skemaform

import "github.com/reoring/skemaform/value"

// Envelope is the persisted form used when a field can choose among several
// named schemas: {"schema": <name>, "data": <value>}.
type Envelope struct {
	Schema string
	Data   value.Value
}

// DecodePersisted recognises an envelope. v must be an object whose keys are
// exactly a string "schema" and "data".
func DecodePersisted(v value.Value) (Envelope, bool) {
	obj, ok := v.(*value.Object)
	if !ok || obj.Len() != 2 {
		return Envelope{}, false
	}
	raw, ok := obj.Get("schema")
	if !ok {
		return Envelope{}, false
	}
	prim, _ := raw.(*value.Primitive)
	name, ok := prim.Str()
	if !ok {
		return Envelope{}, false
	}
	data, ok := obj.Get("data")
	if !ok {
		return Envelope{}, false
	}
	return Envelope{Schema: name, Data: data}, true
}

// Value encodes the envelope as an object.
func (e Envelope) Value() value.Value {
	o := value.NewObject()
	o.Set("schema", value.String(e.Schema))
	o.Set("data", e.Data)
	return o
}
