package ecs

import "reflect"

// Commands buffers structural changes and callbacks made while systems run.
// They are applied by Flush once every system of the frame has executed, in
// this order: deletes, component removals, component additions, spawns, and
// finally deferred functions.
type Commands struct {
	deletes []EntityId
	removes []removeComponentCommand
	adds    []addComponentCommand
	spawns  [][]any
	defers  []func()
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

func newCommands() *Commands {
	return &Commands{}
}

// Spawn queues an entity spawn with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Delete queues an entity deletion. The zero id is ignored.
func (c *Commands) Delete(entity EntityId) {
	if !entity.Valid() {
		return
	}
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition. The zero id is ignored.
func (c *Commands) AddComponent(entity EntityId, component any) {
	if !entity.Valid() {
		return
	}
	c.adds = append(c.adds, addComponentCommand{entity: entity, component: component})
}

// RemoveComponent queues a component removal.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	if !entity.Valid() {
		return
	}
	c.removes = append(c.removes, removeComponentCommand{entity: entity, compType: compType})
}

// Defer queues a function to run after all structural changes are applied.
// Observers use this to see the state of the completed frame.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Empty reports whether nothing is queued.
func (c *Commands) Empty() bool {
	return len(c.deletes)+len(c.removes)+len(c.adds)+len(c.spawns)+len(c.defers) == 0
}

// Flush applies all queued commands to the storage and resets the buffer.
func (c *Commands) Flush(storage *Storage) {
	deleted := make(map[EntityId]bool, len(c.deletes))
	for _, id := range c.deletes {
		storage.Delete(id)
		deleted[id] = true
	}

	for _, cmd := range c.removes {
		if !deleted[cmd.entity] {
			storage.RemoveComponent(cmd.entity, cmd.compType)
		}
	}

	for _, cmd := range c.adds {
		if !deleted[cmd.entity] {
			storage.AddComponent(cmd.entity, cmd.component)
		}
	}

	for _, components := range c.spawns {
		storage.Spawn(components...)
	}

	defers := c.defers
	c.deletes = c.deletes[:0]
	c.removes = c.removes[:0]
	c.adds = c.adds[:0]
	c.spawns = c.spawns[:0]
	c.defers = nil

	for _, fn := range defers {
		fn()
	}
}
