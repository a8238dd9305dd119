package schema

import (
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"
)

// MaxRefDepth bounds the number of $ref hops followed before a chain is
// reported as cyclic.
const MaxRefDepth = 32

var (
	// ErrUnresolvedReference reports a $ref whose definition is absent.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrCyclicReference reports a $ref chain that loops or exceeds the bound.
	ErrCyclicReference = errors.New("cyclic reference")
)

// RefError describes a failed resolution.
type RefError struct {
	Ref   string // the $ref being resolved when the failure occurred
	Name  string // definition name, when one could be extracted
	Depth int    // number of hops already followed
	Err   error  // ErrUnresolvedReference or ErrCyclicReference
	Cause error  // optional underlying error (e.g. malformed pointer)
}

func (e *RefError) Error() string {
	msg := fmt.Sprintf("schema: %v %q", e.Err, e.Ref)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RefError) Unwrap() error { return e.Err }

// Resolve dereferences node against defs. Non-Ref nodes are returned
// unchanged; Ref chains are followed up to MaxRefDepth hops.
func Resolve(node Node, defs *Defs) (Node, error) {
	return resolveChain(node, defs, MaxRefDepth)
}

func resolveChain(node Node, defs *Defs, maxDepth int) (Node, error) {
	var visited map[string]struct{}
	for depth := 0; ; depth++ {
		ref, ok := node.(*Ref)
		if !ok {
			return node, nil
		}
		if depth >= maxDepth {
			return nil, &RefError{Ref: ref.Ref, Depth: depth, Err: ErrCyclicReference}
		}
		ptr, err := ref.Pointer()
		if err != nil {
			return nil, &RefError{Ref: ref.Ref, Depth: depth, Err: ErrUnresolvedReference, Cause: err}
		}
		name, ok := ptr.DefinitionName()
		if !ok {
			return nil, &RefError{Ref: ref.Ref, Depth: depth, Err: ErrUnresolvedReference}
		}
		if _, seen := visited[name]; seen {
			return nil, &RefError{Ref: ref.Ref, Name: name, Depth: depth, Err: ErrCyclicReference}
		}
		target, ok := defs.Lookup(name)
		if !ok {
			return nil, &RefError{Ref: ref.Ref, Name: name, Depth: depth, Err: ErrUnresolvedReference}
		}
		if visited == nil {
			visited = map[string]struct{}{}
		}
		visited[name] = struct{}{}
		node = target
	}
}

// Resolver resolves references with a configurable bound and memoizes results
// per (registry, reference), along with registry merges. Memoized entries live
// as long as the Resolver. It is safe for concurrent use.
type Resolver struct {
	maxDepth int
	cache    *xsync.Map[resolveKey, resolved]
	merges   *xsync.Map[[2]uint64, *Defs]
}

type resolveKey struct {
	defs uint64
	ref  string
}

type resolved struct {
	node Node
	err  error
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxDepth overrides MaxRefDepth; values < 1 are ignored.
func WithMaxDepth(n int) ResolverOption {
	return func(r *Resolver) {
		if n >= 1 {
			r.maxDepth = n
		}
	}
}

// NewResolver returns a caching resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		maxDepth: MaxRefDepth,
		cache:    xsync.NewMap[resolveKey, resolved](),
		merges:   xsync.NewMap[[2]uint64, *Defs](),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// MaxDepth returns the configured hop bound.
func (r *Resolver) MaxDepth() int {
	if r == nil {
		return MaxRefDepth
	}
	return r.maxDepth
}

// Resolve behaves like the package-level Resolve. A nil Resolver resolves
// without caching.
func (r *Resolver) Resolve(node Node, defs *Defs) (Node, error) {
	ref, ok := node.(*Ref)
	if !ok {
		return node, nil
	}
	if r == nil {
		return Resolve(node, defs)
	}
	res, _ := r.cache.LoadOrCompute(resolveKey{defs: defs.ID(), ref: ref.Ref}, func() (resolved, bool) {
		n, err := resolveChain(ref, defs, r.maxDepth)
		return resolved{node: n, err: err}, false
	})
	return res.node, res.err
}

// MergeDefs behaves like the package-level MergeDefs, but merging the same
// pair twice returns the same registry. A nil Resolver does not memoize.
func (r *Resolver) MergeDefs(ambient, local *Defs) *Defs {
	if merged, ok := trivialMerge(ambient, local); ok {
		return merged
	}
	if r == nil {
		return mergeEntries(ambient, local)
	}
	merged, _ := r.merges.LoadOrCompute([2]uint64{ambient.id, local.id}, func() (*Defs, bool) {
		return mergeEntries(ambient, local), false
	})
	return merged
}

// CacheLen reports the number of memoized resolutions.
func (r *Resolver) CacheLen() int {
	if r == nil {
		return 0
	}
	return r.cache.Size()
}
