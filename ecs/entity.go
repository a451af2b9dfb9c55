package ecs

import "fmt"

// EntityId packs the archetype ID into the upper 32 bits and the slot index
// into the lower 32 bits. Ids change when an entity moves between archetypes;
// hold an EntityRef to follow it.
type EntityId uint64

// NewEntityId creates an EntityId from an archetype ID and entity index
func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

// ArchetypeId extracts the archetype ID from the entity ID
func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

// Index extracts the entity index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

func (e EntityId) String() string {
	return fmt.Sprintf("%dv%d", e.Index(), e.ArchetypeId())
}

// EntityRef is a stable reference to an entity
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}
