package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/value"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	_, ok, err := m.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	v := value.MustFromAny(map[string]any{"a": 1})
	require.NoError(t, m.Set(ctx, v))
	v.(*value.Object).Set("a", value.Int(2))

	got, ok, err := m.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, value.Equal(got, value.MustFromAny(map[string]any{"a": 1})), "stored values must be copies")
	require.Equal(t, 1, m.Sets())
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write("person.json", `{"title":"person","type":"object","properties":{"b":{"type":"string"},"a":{"type":"string"}}}`)
	write("untitled.yml", "type: string\n")
	write("bundle.yaml", "title: one\ntype: string\n---\ntitle: two\ntype: number\n")
	write("notes.txt", "ignored")

	schemas, err := DirProvider{Dir: dir}.ListSchemas(context.Background())
	require.NoError(t, err)

	var names []string
	for _, ns := range schemas {
		names = append(names, ns.Name)
		require.Equal(t, ns.Name, ns.Document.Name)
	}
	require.Equal(t, []string{"one", "two", "person", "untitled"}, names)

	write("broken.json", `{"type":`)
	_, err = DirProvider{Dir: dir}.ListSchemas(context.Background())
	require.ErrorContains(t, err, "broken.json")
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	fs := FileStore{Path: filepath.Join(t.TempDir(), "value.json")}

	_, ok, err := fs.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	v, err := value.Unmarshal([]byte(`{"z":1,"a":[true,null]}`))
	require.NoError(t, err)
	require.NoError(t, fs.Set(ctx, v))

	got, ok, err := fs.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"z", "a"}, got.(*value.Object).Keys())
	require.True(t, value.Equal(v, got))
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context) (value.Value, bool, error) { return nil, false, f.err }
func (f failingStore) Set(context.Context, value.Value) error        { return f.err }

func TestJournal(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory(value.MustFromAny(map[string]any{"a": "x", "b": "y"}))
	j := NewJournal(inner)

	_, _, err := j.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, j.Set(ctx, value.MustFromAny(map[string]any{"a": "x", "b": "z"})))
	require.NoError(t, j.Set(ctx, value.MustFromAny(map[string]any{"a": "x"})))

	patches := j.Patches()
	require.Len(t, patches, 2)
	require.JSONEq(t, `[{"op":"replace","path":"/b","value":"z"}]`, string(patches[0]))
	require.JSONEq(t, `[{"op":"remove","path":"/b"}]`, string(patches[1]))

	out, err := j.Replay([]byte(`{"a":"x","b":"y"}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"x"}`, string(out))

	boom := errors.New("boom")
	fj := NewJournal(failingStore{err: boom})
	require.ErrorIs(t, fj.Set(ctx, value.Null()), boom)
	require.Empty(t, fj.Patches())
}

func TestJournal_KeepsNulls(t *testing.T) {
	ctx := context.Background()
	j := NewJournal(NewMemory(nil))
	for _, src := range []string{`{"a":null,"b":[]}`, `{"a":"x","b":[]}`, `{"a":null,"b":[]}`} {
		v, err := value.Unmarshal([]byte(src))
		require.NoError(t, err)
		require.NoError(t, j.Set(ctx, v))
	}
	patches := j.Patches()
	require.Len(t, patches, 3)
	require.JSONEq(t, `[{"op":"replace","path":"/a","value":null}]`, string(patches[2]))

	out, err := j.Replay([]byte(`{}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"a":null,"b":[]}`, string(out))
}

func TestJournal_RootReplace(t *testing.T) {
	ctx := context.Background()
	j := NewJournal(NewMemory(nil))
	require.NoError(t, j.Set(ctx, value.MustFromAny(map[string]any{"o": map[string]any{"k": 1, "gone": true}})))
	require.NoError(t, j.Set(ctx, value.MustFromAny(map[string]any{"o": map[string]any{"k": nil}})))
	require.NoError(t, j.Set(ctx, value.String("flat")))
	require.NoError(t, j.Set(ctx, value.MustFromAny([]any{1, nil})))

	patches := j.Patches()
	require.JSONEq(t, `[{"op":"remove","path":"/o/gone"},{"op":"replace","path":"/o/k","value":null}]`, string(patches[1]))
	require.JSONEq(t, `[{"op":"replace","path":"","value":"flat"}]`, string(patches[2]))

	out, err := j.Replay([]byte(`{}`))
	require.NoError(t, err)
	require.JSONEq(t, `[1,null]`, string(out))
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{{Name: "a"}, {Name: "b"}}
	got, err := p.ListSchemas(context.Background())
	require.NoError(t, err)
	require.Equal(t, []skemaform.NamedSchema{{Name: "a"}, {Name: "b"}}, got)
}
