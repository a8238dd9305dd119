package skemaform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/reoring/skemaform/internal/logging"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

// NamedSchema is one schema document offered by a SchemaProvider.
type NamedSchema struct {
	Name     string
	Document *schema.Document
}

// SchemaProvider lists the schema documents available to a field.
type SchemaProvider interface {
	ListSchemas(ctx context.Context) ([]NamedSchema, error)
}

// ValueStore persists the value of one field. Get reports false when nothing
// has been stored yet.
type ValueStore interface {
	Get(ctx context.Context) (value.Value, bool, error)
	Set(ctx context.Context, v value.Value) error
}

// State is a Session lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	// StateUnavailable is terminal: the schema could not be selected or the
	// collaborators failed during Load.
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session edits the value of one field. It owns its value tree: edits are
// applied synchronously and every committed edit is written back to the
// ValueStore in the background.
type Session struct {
	provider SchemaProvider
	store    ValueStore
	ambient  *schema.Defs
	walker   *Walker
	envelope bool
	log      zerolog.Logger

	mu      sync.Mutex
	state   State
	err     error
	fieldID string
	schemas []NamedSchema
	active  NamedSchema
	engine  *Engine
	root    value.Value
	issues  Issues
	bg      context.Context

	writes        sync.WaitGroup
	writeFailures atomic.Int64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithAmbientDefs supplies definitions shared by every schema document.
func WithAmbientDefs(defs *schema.Defs) SessionOption { return func(s *Session) { s.ambient = defs } }

// WithResolver sets the resolver used by the session's Walker.
func WithResolver(r *schema.Resolver) SessionOption {
	return func(s *Session) { s.walker = NewWalker(r) }
}

// WithEnvelope stores values as {"schema": name, "data": value} so the field
// can switch between schemas.
func WithEnvelope() SessionOption { return func(s *Session) { s.envelope = true } }

// WithLogger overrides the package logger.
func WithLogger(l zerolog.Logger) SessionOption { return func(s *Session) { s.log = l } }

// NewSession returns an uninitialized session.
func NewSession(provider SchemaProvider, store ValueStore, opts ...SessionOption) *Session {
	s := &Session{provider: provider, store: store, log: logging.Logger}
	for _, o := range opts {
		o(s)
	}
	if s.walker == nil {
		s.walker = NewWalker(schema.NewResolver())
	}
	return s
}

// Load fetches the schema named fieldID and the stored value, synthesizing a
// value when none is stored. Any failure moves the session to
// StateUnavailable and is returned.
func (s *Session) Load(ctx context.Context, fieldID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUninitialized {
		return fmt.Errorf("skemaform: Load called in state %s", s.state)
	}
	s.state = StateLoading
	s.fieldID = fieldID
	s.bg = context.WithoutCancel(ctx)
	log := s.log.With().Str("field", fieldID).Logger()
	log.Debug().Msg("loading field")

	if err := s.load(ctx, fieldID); err != nil {
		s.state = StateUnavailable
		s.err = err
		log.Warn().Err(err).Msg("field unavailable")
		return err
	}
	s.state = StateReady
	for _, it := range s.issues {
		log.Warn().Str("path", it.Path).Str("code", it.Code).Msg(it.Message)
	}
	log.Debug().Str("schema", s.active.Name).Msg("field ready")
	return nil
}

func (s *Session) load(ctx context.Context, fieldID string) error {
	schemas, err := s.provider.ListSchemas(ctx)
	if err != nil {
		return &StoreError{Op: "list_schemas", Err: err}
	}
	s.schemas = schemas

	stored, found, err := s.store.Get(ctx)
	if err != nil {
		return &StoreError{Op: "get", Err: err}
	}

	name := fieldID
	var data value.Value
	if found {
		data = stored
		if s.envelope {
			if env, ok := DecodePersisted(stored); ok {
				name, data = env.Schema, env.Data
			}
		}
	}

	ns, err := pickSchema(schemas, name)
	if err != nil {
		return err
	}
	s.activate(ns)
	if data == nil {
		s.root, s.issues = s.engine.Synthesize()
	} else {
		s.root = data
	}
	return nil
}

// pickSchema returns the single schema called name.
func pickSchema(schemas []NamedSchema, name string) (NamedSchema, error) {
	var match []NamedSchema
	for _, ns := range schemas {
		if ns.Name == name {
			match = append(match, ns)
		}
	}
	switch len(match) {
	case 0:
		return NamedSchema{}, fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
	case 1:
		if match[0].Document == nil || match[0].Document.Root == nil {
			return NamedSchema{}, fmt.Errorf("%w: %q has no document", ErrSchemaNotFound, name)
		}
		return match[0], nil
	}
	return NamedSchema{}, fmt.Errorf("%w: %d schemas named %q", ErrAmbiguousSchema, len(match), name)
}

func (s *Session) activate(ns NamedSchema) {
	s.active = ns
	defs := s.walker.resolver.MergeDefs(s.ambient, ns.Document.Defs)
	s.engine = NewEngine(ns.Document.Root, defs, WithWalker(s.walker), WithOnChange(s.committed))
}

// SelectSchema switches an envelope session to another named schema and
// replaces the value with that schema's default.
func (s *Session) SelectSchema(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	if !s.envelope {
		return errors.New("skemaform: schema selection requires envelope mode")
	}
	ns, err := pickSchema(s.schemas, name)
	if err != nil {
		return err
	}
	s.activate(ns)
	s.root, s.issues = s.engine.Synthesize()
	s.writeBack()
	return nil
}

// SetPrimitive sets the primitive at path. See Engine.SetPrimitive.
func (s *Session) SetPrimitive(path value.Path, v *value.Primitive) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	_, err := s.engine.SetPrimitive(s.root, path, v)
	return err
}

// SetObjectProperty sets key in the object at path.
func (s *Session) SetObjectProperty(path value.Path, key string, v value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	s.engine.SetObjectProperty(s.root, path, key, v)
	return nil
}

// InsertArrayItem appends a default element to the array at path.
func (s *Session) InsertArrayItem(path value.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	s.engine.InsertArrayItem(s.root, path)
	return nil
}

// RemoveArrayItem removes element index of the array at path.
func (s *Session) RemoveArrayItem(path value.Path, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	s.engine.RemoveArrayItem(s.root, path, index)
	return nil
}

// MoveArrayItem reorders the array at path.
func (s *Session) MoveArrayItem(path value.Path, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	s.engine.MoveArrayItem(s.root, path, from, to)
	return nil
}

// committed runs under s.mu from inside an Engine call.
func (s *Session) committed(c Change) {
	s.root = c.Root
	s.log.Trace().Str("field", s.fieldID).Str("op", string(c.Op)).Str("path", c.Path.Pointer()).Msg("edit committed")
	s.writeBack()
}

func (s *Session) persisted() value.Value {
	snap := value.Clone(s.root)
	if s.envelope {
		return Envelope{Schema: s.active.Name, Data: snap}.Value()
	}
	return snap
}

// writeBack stores a snapshot without waiting. Failures are logged and
// counted; the in-memory value is kept.
func (s *Session) writeBack() {
	snap := s.persisted()
	ctx := s.bg
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		if err := s.store.Set(ctx, snap); err != nil {
			s.writeFailures.Add(1)
			s.log.Warn().Str("field", s.fieldID).Err(&StoreError{Op: "set", Err: err}).Msg("write-back failed")
		}
	}()
}

// Flush waits for pending write-backs and then stores the current value
// synchronously. Edits made concurrently block until the wait is over.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	// write-backs are only started under s.mu and never take it
	s.writes.Wait()
	if s.state != StateReady {
		s.mu.Unlock()
		return nil
	}
	snap := s.persisted()
	s.mu.Unlock()
	if err := s.store.Set(ctx, snap); err != nil {
		return &StoreError{Op: "set", Err: err}
	}
	return nil
}

// Close flushes the session.
func (s *Session) Close(ctx context.Context) error { return s.Flush(ctx) }

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that made the session unavailable.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Value returns a copy of the current value.
func (s *Session) Value() value.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil {
		return nil
	}
	return value.Clone(s.root)
}

// SchemaName returns the name of the active schema.
func (s *Session) SchemaName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Name
}

// Schema returns the active schema document.
func (s *Session) Schema() *schema.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Document
}

// Issues returns the contained failures of the last synthesis.
func (s *Session) Issues() Issues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(Issues(nil), s.issues...)
}

// WriteFailures counts background write-backs that failed.
func (s *Session) WriteFailures() int64 { return s.writeFailures.Load() }
