package ecs

import "reflect"

// Bundle groups the components of one kind of entity, with defaults filled
// in by its constructor.
type Bundle interface {
	Components() []any
}

// Commands buffers structural changes made while systems run. The scheduler
// flushes them once every system of the current schedule has executed.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []func()
}

// NewCommands returns an empty queue. Systems get theirs from UpdateFrame;
// this is for code that batches changes outside the scheduler.
func NewCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []any
	onSpawn    func(EntityId)
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues fn to run after every other command of the flush.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// SpawnBundle queues a spawn of the bundle's components.
func (c *Commands) SpawnBundle(bundle Bundle) {
	c.Spawn(bundle.Components()...)
}

// SpawnThen queues a spawn and calls onSpawn with the new id once it exists.
func (c *Commands) SpawnThen(onSpawn func(EntityId), components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components, onSpawn: onSpawn})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies the queue to storage in a fixed order: deletes, removals,
// additions, spawns, then deferred functions. Changes aimed at an entity
// deleted in the same flush are dropped.
func (c *Commands) Flush(storage *Storage) {
	deleted := make(map[EntityId]bool, len(c.deletes))

	for _, id := range c.deletes {
		storage.Delete(id)
		deleted[id] = true
	}

	// Removals and additions chained on one entity must follow its id as it moves.
	moved := make(map[EntityId]EntityId)
	resolve := func(id EntityId) EntityId {
		if next, ok := moved[id]; ok {
			return next
		}
		return id
	}

	for _, cmd := range c.removes {
		if deleted[cmd.entity] {
			continue
		}
		moved[cmd.entity] = storage.RemoveComponent(resolve(cmd.entity), cmd.compType)
	}

	for _, cmd := range c.adds {
		if deleted[cmd.entity] {
			continue
		}
		current := resolve(cmd.entity)
		if current == 0 {
			continue
		}
		moved[cmd.entity] = storage.AddComponent(current, cmd.component)
	}

	for _, cmd := range c.spawns {
		id := storage.Spawn(cmd.components...)
		if cmd.onSpawn != nil {
			cmd.onSpawn(id)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
