package common

// Node is an opaque handle to an entry in an Arena. A Node is only
// meaningful together with the arena that issued it: resolving it against a
// different arena yields an unrelated entry (or an assertion failure when
// out of range), never an error value. Callers that hold nodes from several
// arenas are responsible for keeping them apart.
type Node int32

// Arena is an append-only store that hands out dense Node handles.
// Entries are never moved or freed, so handle n always resolves to the n-th
// value added and remains valid for the life of the arena. The zero Arena is
// ready to use.
type Arena[T any] struct {
	items []T
}

// NewArena returns an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// NewArenaWithCapacity returns an empty arena with room for n entries, for
// callers that know the final size up front (whole-tree rebuilds).
func NewArenaWithCapacity[T any](n int) *Arena[T] {
	return &Arena[T]{items: make([]T, 0, n)}
}

// Add appends v and returns its handle. Add never fails.
func (a *Arena[T]) Add(v T) Node {
	a.items = append(a.items, v)
	return Node(len(a.items) - 1)
}

// Get resolves a handle issued by this arena. A handle this arena never
// issued is a programming error.
func (a *Arena[T]) Get(n Node) T {
	Assert(n >= 0 && int(n) < len(a.items), "arena: handle %d out of range [0, %d)", n, len(a.items))
	return a.items[n]
}

// Len returns the number of entries added so far.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Clone returns a new arena holding the same entries. Handles issued so far
// resolve identically in both arenas; later additions diverge them.
func (a *Arena[T]) Clone() *Arena[T] {
	items := make([]T, len(a.items))
	copy(items, a.items)
	return &Arena[T]{items: items}
}
