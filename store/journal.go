package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-json"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/value"
)

// Journal wraps a ValueStore and records an RFC 6902 JSON Patch for every
// successful Set, relative to the previously stored value. Explicit nulls
// survive a Replay.
type Journal struct {
	inner skemaform.ValueStore

	mu      sync.Mutex
	last    value.Value
	patches []json.RawMessage
}

// NewJournal returns a Journal over inner.
func NewJournal(inner skemaform.ValueStore) *Journal { return &Journal{inner: inner} }

// Get implements skemaform.ValueStore and primes the journal baseline.
func (j *Journal) Get(ctx context.Context) (value.Value, bool, error) {
	v, ok, err := j.inner.Get(ctx)
	if err != nil || !ok {
		return v, ok, err
	}
	j.mu.Lock()
	j.last = value.Clone(v)
	j.mu.Unlock()
	return v, true, nil
}

// Set implements skemaform.ValueStore. Failed writes are not journaled.
func (j *Journal) Set(ctx context.Context, v value.Value) error {
	if err := j.inner.Set(ctx, v); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	prev := j.last
	if prev == nil {
		prev = value.NewObject()
	}
	patch, err := Diff(prev, v)
	if err != nil {
		return err
	}
	j.last = value.Clone(v)
	j.patches = append(j.patches, patch)
	return nil
}

// Patches returns the recorded patches, oldest first.
func (j *Journal) Patches() []json.RawMessage {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]json.RawMessage(nil), j.patches...)
}

// Replay applies the recorded patches to base and returns the result.
func (j *Journal) Replay(base []byte) ([]byte, error) {
	doc := base
	for i, p := range j.Patches() {
		if whole, ok := wholeDocument(p); ok {
			doc = whole
			continue
		}
		ops, err := jsonpatch.DecodePatch(p)
		if err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
		if len(ops) == 0 {
			continue
		}
		if doc, err = ops.Apply(doc); err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
	}
	return doc, nil
}

type patchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Diff returns the JSON Patch turning before into after. Objects are diffed
// key by key; any other change replaces the node, and a change at the root of
// a non-object document is a single replace of path "".
func Diff(before, after value.Value) (json.RawMessage, error) {
	ops := []patchOp{}
	bo, bok := before.(*value.Object)
	ao, aok := after.(*value.Object)
	var err error
	if bok && aok {
		ops, err = diffObject(ops, value.Root(), bo, ao)
	} else if !value.Equal(before, after) {
		ops, err = appendOp(ops, "replace", "", after)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(ops)
}

func diffObject(ops []patchOp, at value.Path, before, after *value.Object) ([]patchOp, error) {
	var err error
	for _, k := range before.Keys() {
		if _, ok := after.Get(k); !ok {
			ops = append(ops, patchOp{Op: "remove", Path: at.Key(k).Pointer()})
		}
	}
	for _, k := range after.Keys() {
		next, _ := after.Get(k)
		prev, ok := before.Get(k)
		switch {
		case !ok:
			ops, err = appendOp(ops, "add", at.Key(k).Pointer(), next)
		case value.Equal(prev, next):
			continue
		default:
			po, pok := prev.(*value.Object)
			no, nok := next.(*value.Object)
			if pok && nok {
				ops, err = diffObject(ops, at.Key(k), po, no)
			} else {
				ops, err = appendOp(ops, "replace", at.Key(k).Pointer(), next)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return ops, nil
}

func appendOp(ops []patchOp, op, path string, v value.Value) ([]patchOp, error) {
	raw, err := value.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(ops, patchOp{Op: op, Path: path, Value: raw}), nil
}

// wholeDocument recognises the single root replace emitted by Diff.
func wholeDocument(p json.RawMessage) ([]byte, bool) {
	var ops []patchOp
	if err := json.Unmarshal(p, &ops); err != nil || len(ops) != 1 {
		return nil, false
	}
	if ops[0].Op != "replace" || ops[0].Path != "" {
		return nil, false
	}
	return bytes.TrimSpace(ops[0].Value), true
}
