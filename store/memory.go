package store

import (
	"context"
	"sync"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/value"
)

// StaticProvider serves a fixed list of schemas.
type StaticProvider []skemaform.NamedSchema

// ListSchemas implements skemaform.SchemaProvider.
func (p StaticProvider) ListSchemas(context.Context) ([]skemaform.NamedSchema, error) {
	return append([]skemaform.NamedSchema(nil), p...), nil
}

// Memory is an in-memory ValueStore. Values are copied on the way in and out.
type Memory struct {
	mu    sync.Mutex
	v     value.Value
	found bool
	sets  int
}

// NewMemory returns a store holding initial; a nil initial means nothing is
// stored yet.
func NewMemory(initial value.Value) *Memory {
	m := &Memory{}
	if initial != nil {
		m.v, m.found = value.Clone(initial), true
	}
	return m
}

// Get implements skemaform.ValueStore.
func (m *Memory) Get(context.Context) (value.Value, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.found {
		return nil, false, nil
	}
	return value.Clone(m.v), true, nil
}

// Set implements skemaform.ValueStore.
func (m *Memory) Set(_ context.Context, v value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v, m.found = value.Clone(v), true
	m.sets++
	return nil
}

// Sets returns the number of Set calls.
func (m *Memory) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}
