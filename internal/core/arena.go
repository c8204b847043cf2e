package core

// Arena is a collection of entities indexed by stable integer id.
// Iteration follows insertion order, so passes over an arena are
// deterministic for a given seed.
type Arena[T any] struct {
	items map[int64]*T
	order []int64
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{items: make(map[int64]*T)}
}

// Insert adds or replaces the entity with the given id.
func (a *Arena[T]) Insert(id int64, v *T) {
	if _, exists := a.items[id]; !exists {
		a.order = append(a.order, id)
	}
	a.items[id] = v
}

// Get returns the entity with the given id.
func (a *Arena[T]) Get(id int64) (*T, bool) {
	v, ok := a.items[id]
	return v, ok
}

// Len returns the number of entities.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Each calls fn for every entity in insertion order until fn returns false.
// Entities inserted during the walk are not visited.
func (a *Arena[T]) Each(fn func(id int64, v *T) bool) {
	ids := a.order
	for _, id := range ids {
		v, ok := a.items[id]
		if !ok {
			continue
		}
		if !fn(id, v) {
			return
		}
	}
}

// Remove deletes a single entity. Unknown ids are ignored.
func (a *Arena[T]) Remove(id int64) {
	a.RemoveAll([]int64{id})
}

// RemoveAll deletes the given entities. Unknown ids are ignored.
// Must not be called from inside Each.
func (a *Arena[T]) RemoveAll(ids []int64) {
	if len(ids) == 0 {
		return
	}
	removed := 0
	for _, id := range ids {
		if _, ok := a.items[id]; ok {
			delete(a.items, id)
			removed++
		}
	}
	if removed == 0 {
		return
	}
	kept := a.order[:0]
	for _, id := range a.order {
		if _, ok := a.items[id]; ok {
			kept = append(kept, id)
		}
	}
	a.order = kept
}
