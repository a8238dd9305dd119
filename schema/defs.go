package schema

import (
	"sort"
	"sync/atomic"
)

// Defs is an immutable registry of named definitions. Every registry has a
// process-unique identity used as a cache key by Resolver.
type Defs struct {
	id      uint64
	entries map[string]Node
	names   []string
}

var defsSeq atomic.Uint64

// NewDefs builds a registry from entries. The map is copied.
func NewDefs(entries map[string]Node) *Defs {
	d := &Defs{id: defsSeq.Add(1), entries: make(map[string]Node, len(entries))}
	for name, n := range entries {
		d.entries[name] = n
		d.names = append(d.names, name)
	}
	sort.Strings(d.names)
	return d
}

// ID returns the registry identity; 0 for a nil registry.
func (d *Defs) ID() uint64 {
	if d == nil {
		return 0
	}
	return d.id
}

// Len returns the number of definitions.
func (d *Defs) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Names returns definition names in sorted order.
func (d *Defs) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.names...)
}

// Lookup returns the definition registered under name.
func (d *Defs) Lookup(name string) (Node, bool) {
	if d == nil {
		return nil, false
	}
	n, ok := d.entries[name]
	return n, ok
}

// LookupPointer resolves a parsed pointer against the registry by its
// definition name.
func (d *Defs) LookupPointer(p Pointer) (Node, bool) {
	name, ok := p.DefinitionName()
	if !ok {
		return nil, false
	}
	return d.Lookup(name)
}

// MergeDefs combines an ambient registry with local definitions; local
// entries win on name collision. An empty side yields the other registry
// unchanged. Each call builds a new registry; Resolver.MergeDefs memoizes.
func MergeDefs(ambient, local *Defs) *Defs {
	if merged, ok := trivialMerge(ambient, local); ok {
		return merged
	}
	return mergeEntries(ambient, local)
}

func trivialMerge(ambient, local *Defs) (*Defs, bool) {
	if local.Len() == 0 {
		return ambient, true
	}
	if ambient.Len() == 0 || ambient == local {
		return local, true
	}
	return nil, false
}

func mergeEntries(ambient, local *Defs) *Defs {
	entries := make(map[string]Node, len(ambient.entries)+len(local.entries))
	for name, n := range ambient.entries {
		entries[name] = n
	}
	for name, n := range local.entries {
		entries[name] = n
	}
	return NewDefs(entries)
}
