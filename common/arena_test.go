package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAddGet(t *testing.T) {
	a := NewArena[string]()
	assert.Equal(t, 0, a.Len())

	n0 := a.Add("first")
	n1 := a.Add("second")
	n2 := a.Add("third")

	assert.Equal(t, Node(0), n0)
	assert.Equal(t, Node(1), n1)
	assert.Equal(t, Node(2), n2)
	assert.Equal(t, 3, a.Len())

	assert.Equal(t, "first", a.Get(n0))
	assert.Equal(t, "second", a.Get(n1))
	assert.Equal(t, "third", a.Get(n2))
}

func TestArenaHandlesAreDense(t *testing.T) {
	a := NewArenaWithCapacity[int](64)
	for i := 0; i < 64; i++ {
		n := a.Add(i * 10)
		assert.Equal(t, Node(i), n, "handle should equal insertion order")
	}
	for i := 0; i < 64; i++ {
		assert.Equal(t, i*10, a.Get(Node(i)))
	}
}

func TestArenaForeignHandlePanics(t *testing.T) {
	a := NewArena[int]()
	a.Add(1)

	// Handles the arena never issued are programming errors, not error values.
	assert.Panics(t, func() { a.Get(Node(1)) })
	assert.Panics(t, func() { a.Get(Node(-1)) })
	assert.Panics(t, func() { a.Get(Node(100)) })
}

func TestArenaClone(t *testing.T) {
	a := NewArena[int]()
	n0 := a.Add(7)
	n1 := a.Add(8)

	b := a.Clone()
	require.Equal(t, a.Len(), b.Len())
	assert.Equal(t, a.Get(n0), b.Get(n0))
	assert.Equal(t, a.Get(n1), b.Get(n1))

	// Divergence after the clone: new entries are invisible to the original.
	n2 := b.Add(9)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 9, b.Get(n2))
	assert.Panics(t, func() { a.Get(n2) })
}
