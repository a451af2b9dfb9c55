package ecs

import "iter"

// iComponentStorage is the type-erased column behind one component type of an archetype.
type iComponentStorage interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Compact() map[int]int
	Iter() iter.Seq[int]
}
