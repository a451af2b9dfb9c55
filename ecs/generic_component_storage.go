package ecs

import (
	"iter"
	"reflect"
	"sort"
)

// ComponentRegistry maps component types to storage factories. Each Storage
// gets its own registry so independent worlds never share type state.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent makes T usable as a component. Registering twice is a no-op.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	if _, ok := r.factories[t]; ok {
		return
	}
	r.factories[t] = func() iComponentStorage {
		return &genericComponentStorage[T]{}
	}
}

// IsRegistered reports whether t has been registered.
func (r *ComponentRegistry) IsRegistered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

// Types lists the registered component types sorted by name.
func (r *ComponentRegistry) Types() []reflect.Type {
	types := make([]reflect.Type, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const genericBlockSize = 64

// genericComponentStorage keeps components of type T in fixed-size blocks so
// pointers handed out by Get stay valid while the storage grows.
type genericComponentStorage[T any] struct {
	blocks    [][genericBlockSize]T
	filled    [][genericBlockSize]bool
	freeSlots []int
	nextIndex int
}

func (cs *genericComponentStorage[T]) locate(index int) (block, slot int, ok bool) {
	if index < 0 {
		return 0, 0, false
	}
	block, slot = index/genericBlockSize, index%genericBlockSize
	return block, slot, block < len(cs.blocks)
}

// Append stores item (a T or *T) and returns its slot, reusing freed slots first.
func (cs *genericComponentStorage[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(cs.freeSlots); n > 0 {
		index = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
	} else {
		index = cs.nextIndex
		cs.nextIndex++
		if index/genericBlockSize >= len(cs.blocks) {
			cs.blocks = append(cs.blocks, [genericBlockSize]T{})
			cs.filled = append(cs.filled, [genericBlockSize]bool{})
		}
	}

	block, slot := index/genericBlockSize, index%genericBlockSize
	cs.blocks[block][slot] = value
	cs.filled[block][slot] = true
	return index
}

// Get returns a *T for the slot, or nil when the slot is empty.
func (cs *genericComponentStorage[T]) Get(index int) any {
	block, slot, ok := cs.locate(index)
	if !ok || !cs.filled[block][slot] {
		return nil
	}
	return &cs.blocks[block][slot]
}

// Delete zeroes the slot and queues it for reuse.
func (cs *genericComponentStorage[T]) Delete(index int) {
	block, slot, ok := cs.locate(index)
	if !ok || !cs.filled[block][slot] {
		return
	}

	var zero T
	cs.filled[block][slot] = false
	cs.blocks[block][slot] = zero
	cs.freeSlots = append(cs.freeSlots, index)
}

func (cs *genericComponentStorage[T]) Has(index int) bool {
	block, slot, ok := cs.locate(index)
	return ok && cs.filled[block][slot]
}

// Compact moves live components to the front and returns old->new slot indices.
func (cs *genericComponentStorage[T]) Compact() map[int]int {
	indexMap := make(map[int]int)

	live := cs.nextIndex - len(cs.freeSlots)
	if live <= 0 {
		cs.blocks = make([][genericBlockSize]T, 1)
		cs.filled = make([][genericBlockSize]bool, 1)
		cs.freeSlots = nil
		cs.nextIndex = 0
		return indexMap
	}

	numBlocks := (live + genericBlockSize - 1) / genericBlockSize
	blocks := make([][genericBlockSize]T, numBlocks)
	filled := make([][genericBlockSize]bool, numBlocks)

	writePos := 0
	for readIdx := range cs.Iter() {
		indexMap[readIdx] = writePos
		blocks[writePos/genericBlockSize][writePos%genericBlockSize] = cs.blocks[readIdx/genericBlockSize][readIdx%genericBlockSize]
		filled[writePos/genericBlockSize][writePos%genericBlockSize] = true
		writePos++
	}

	cs.blocks = blocks
	cs.filled = filled
	cs.freeSlots = nil
	cs.nextIndex = writePos

	return indexMap
}

func (cs *genericComponentStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < cs.nextIndex; i++ {
			if cs.Has(i) && !yield(i) {
				return
			}
		}
	}
}
