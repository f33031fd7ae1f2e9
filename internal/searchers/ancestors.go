package searchers

import (
	"github.com/janpfeifer/freecellGo/internal/generics"
	"github.com/janpfeifer/freecellGo/internal/state"
)

// AncestorSet holds the packed states of the current search path, from the root to the state being
// expanded. It must be used with a strict stack discipline: every Push matched by one Pop.
type AncestorSet struct {
	set   generics.Set[state.PackedState]
	stack []state.PackedState
}

// NewAncestorSet returns an empty AncestorSet.
func NewAncestorSet() *AncestorSet {
	return &AncestorSet{
		set:   generics.MakeSet[state.PackedState](256),
		stack: make([]state.PackedState, 0, 256),
	}
}

// Contains returns whether p is in the current path.
func (a *AncestorSet) Contains(p state.PackedState) bool {
	return a.set.Has(p)
}

// Push p to the path. p must not be in the path already.
func (a *AncestorSet) Push(p state.PackedState) {
	a.set.Insert(p)
	a.stack = append(a.stack, p)
}

// Pop removes the last pushed state from the path. It panics if the set is empty.
func (a *AncestorSet) Pop() {
	last := len(a.stack) - 1
	a.set.Delete(a.stack[last])
	a.stack = a.stack[:last]
}

// Len returns the number of states in the path.
func (a *AncestorSet) Len() int {
	return len(a.stack)
}

// Path returns the states in the path, from the root. The returned slice is owned by the AncestorSet
// and is only valid until the next Push or Pop.
func (a *AncestorSet) Path() []state.PackedState {
	return a.stack
}
