// Package registry owns the set of live simulation entities. Structural
// changes are staged and only applied at an explicit commit point, so the
// live set can be iterated while entities spawn or remove each other.
package registry

// Registry stages additions and removals of entities of type T.
// It is not safe for concurrent use; the simulation is single-threaded.
type Registry[T comparable] struct {
	live          []T
	index         map[T]struct{}
	pendingAdd    []T
	pendingRemove []T
}

// New returns an empty registry.
func New[T comparable]() *Registry[T] {
	return &Registry[T]{index: make(map[T]struct{})}
}

// Add stages e for inclusion at the next Commit. Adding an entity that is
// already live or already staged is a no-op.
func (r *Registry[T]) Add(e T) {
	if _, ok := r.index[e]; ok {
		return
	}
	for _, p := range r.pendingAdd {
		if p == e {
			return
		}
	}
	r.pendingAdd = append(r.pendingAdd, e)
}

// Remove stages e for exclusion at the next Commit.
func (r *Registry[T]) Remove(e T) {
	r.pendingRemove = append(r.pendingRemove, e)
}

// Commit applies staged additions, then staged removals, then clears both
// stages. An entity added and removed in the same tick ends up absent.
// Slices previously returned by Live are left untouched.
func (r *Registry[T]) Commit() {
	if len(r.pendingAdd) == 0 && len(r.pendingRemove) == 0 {
		return
	}

	gone := make(map[T]struct{}, len(r.pendingRemove))
	for _, e := range r.pendingRemove {
		gone[e] = struct{}{}
	}

	next := make([]T, 0, len(r.live)+len(r.pendingAdd))
	for _, e := range r.live {
		if _, ok := gone[e]; ok {
			delete(r.index, e)
			continue
		}
		next = append(next, e)
	}
	for _, e := range r.pendingAdd {
		if _, ok := gone[e]; ok {
			continue
		}
		r.index[e] = struct{}{}
		next = append(next, e)
	}

	r.live = next
	r.pendingAdd = r.pendingAdd[:0]
	r.pendingRemove = r.pendingRemove[:0]
}

// Live returns the committed entities in insertion order. The slice is only
// valid until the next Commit and must not be modified by the caller.
func (r *Registry[T]) Live() []T { return r.live }

// Len returns the number of live entities.
func (r *Registry[T]) Len() int { return len(r.live) }

// Contains reports whether e is live.
func (r *Registry[T]) Contains(e T) bool {
	_, ok := r.index[e]
	return ok
}

// Staged returns the number of pending additions and removals.
func (r *Registry[T]) Staged() (adds, removes int) {
	return len(r.pendingAdd), len(r.pendingRemove)
}
