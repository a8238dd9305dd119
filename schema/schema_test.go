package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func str() *Primitive { return &Primitive{Type: KindString} }

func ref(name string) *Ref { return &Ref{Ref: "#/$defs/" + name} }

func TestParsePointer(t *testing.T) {
	cases := []struct {
		in      string
		tokens  []string
		name    string
		wantErr bool
	}{
		{in: "#", tokens: []string{}},
		{in: "#/$defs/Address", tokens: []string{"$defs", "Address"}, name: "Address"},
		{in: "#/definitions/a~1b~0c", tokens: []string{"definitions", "a/b~c"}, name: "a/b~c"},
		{in: "other.json#/$defs/x", wantErr: true},
		{in: "#anchor", wantErr: true},
	}
	for _, tc := range cases {
		p, err := ParsePointer(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if diff := cmp.Diff(tc.tokens, p.Tokens(), cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("%q tokens (-want +got):\n%s", tc.in, diff)
		}
		name, ok := p.DefinitionName()
		if ok != (tc.name != "") || name != tc.name {
			t.Fatalf("%q: name=%q ok=%v", tc.in, name, ok)
		}
		if p.String() != tc.in {
			t.Fatalf("round trip: %q -> %q", tc.in, p.String())
		}
	}
}

func TestResolve_NonRefUnchanged(t *testing.T) {
	n := str()
	got, err := Resolve(n, nil)
	if err != nil || got != n {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestResolve_Missing(t *testing.T) {
	_, err := Resolve(ref("missing"), NewDefs(nil))
	if !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("expected unresolved, got %v", err)
	}
	var re *RefError
	if !errors.As(err, &re) || re.Name != "missing" {
		t.Fatalf("expected RefError naming missing, got %#v", err)
	}
}

// chain builds k refs ending at a string schema.
func chain(k int) (Node, *Defs) {
	entries := map[string]Node{}
	for i := 1; i < k; i++ {
		entries[fmt.Sprintf("r%d", i)] = ref(fmt.Sprintf("r%d", i+1))
	}
	entries[fmt.Sprintf("r%d", k)] = str()
	return ref("r1"), NewDefs(entries)
}

func TestResolve_ChainBound(t *testing.T) {
	n, defs := chain(MaxRefDepth)
	got, err := Resolve(n, defs)
	if err != nil {
		t.Fatalf("chain of %d: %v", MaxRefDepth, err)
	}
	if got.Kind() != KindString {
		t.Fatalf("expected string terminal, got %v", got.Kind())
	}

	n, defs = chain(MaxRefDepth + 1)
	if _, err := Resolve(n, defs); !errors.Is(err, ErrCyclicReference) {
		t.Fatalf("chain of %d: expected cyclic, got %v", MaxRefDepth+1, err)
	}
}

func TestResolve_Cycle(t *testing.T) {
	defs := NewDefs(map[string]Node{"a": ref("b"), "b": ref("a")})
	_, err := Resolve(ref("a"), defs)
	if !errors.Is(err, ErrCyclicReference) {
		t.Fatalf("expected cyclic, got %v", err)
	}
	var re *RefError
	if !errors.As(err, &re) || re.Depth > 2 {
		t.Fatalf("cycle should be detected early, got %#v", err)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	n, defs := chain(3)
	once, err := Resolve(n, defs)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Resolve(once, defs)
	if err != nil || twice != once {
		t.Fatalf("resolve not idempotent: %v %v", twice, err)
	}
}

func TestResolver_Cache(t *testing.T) {
	r := NewResolver(WithMaxDepth(2))
	n, defs := chain(3)
	if _, err := r.Resolve(n, defs); !errors.Is(err, ErrCyclicReference) {
		t.Fatalf("bound 2 should reject chain of 3, got %v", err)
	}
	n2, defs2 := chain(2)
	a, err := r.Resolve(n2, defs2)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := r.Resolve(ref("r1"), defs2)
	if a != b {
		t.Fatal("expected identical cached node")
	}
	if r.CacheLen() != 2 {
		t.Fatalf("cache len = %d", r.CacheLen())
	}
	var nilResolver *Resolver
	if got, err := nilResolver.Resolve(n2, defs2); err != nil || got != a {
		t.Fatalf("nil resolver: %v %v", got, err)
	}
}

func TestMergeDefs(t *testing.T) {
	ambientA, localA := str(), &Primitive{Type: KindInteger}
	ambient := NewDefs(map[string]Node{"a": ambientA, "only": str()})
	local := NewDefs(map[string]Node{"a": localA})

	m := MergeDefs(ambient, local)
	if got, _ := m.Lookup("a"); got != localA {
		t.Fatal("local definition must win")
	}
	if _, ok := m.Lookup("only"); !ok {
		t.Fatal("ambient-only definition lost")
	}
	if MergeDefs(ambient, local) == m {
		t.Fatal("package-level merge must not retain registries")
	}
	r := NewResolver()
	rm := r.MergeDefs(ambient, local)
	if r.MergeDefs(ambient, local) != rm {
		t.Fatal("resolver merge must be memoized")
	}
	if NewResolver().MergeDefs(ambient, local) == rm {
		t.Fatal("merge memo must be scoped to its resolver")
	}
	var nilResolver *Resolver
	if got, _ := nilResolver.MergeDefs(ambient, local).Lookup("a"); got != localA {
		t.Fatal("nil resolver must still merge")
	}
	if MergeDefs(ambient, nil) != ambient || MergeDefs(nil, local) != local {
		t.Fatal("empty side must return the other registry")
	}
	if diff := cmp.Diff([]string{"a", "only"}, m.Names()); diff != "" {
		t.Fatal(diff)
	}
}
