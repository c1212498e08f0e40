package ecs

import (
	"reflect"
	"sort"

	"github.com/kamstrup/intmap"
)

// Storage is the main ECS storage: entities, their components and the
// singleton components that belong to no entity.
type Storage struct {
	registry   *ComponentRegistry
	tables     map[reflect.Type]table
	alive      *intmap.Map[EntityId, int]
	singletons map[reflect.Type]any
	lastId     EntityId
}

// NewStorage creates a new ECS storage with the given component registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		tables:     make(map[reflect.Type]table),
		alive:      intmap.New[EntityId, int](64),
		singletons: make(map[reflect.Type]any),
	}
}

func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t == nil {
		panic("component cannot be nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		panic("components cannot be pointers, maps, channels, or functions")
	}
	return t
}

func (s *Storage) tableFor(t reflect.Type) table {
	if tbl, ok := s.tables[t]; ok {
		return tbl
	}
	factory := s.registry.factory(t)
	if factory == nil {
		panic("component type " + t.String() + " not registered")
	}
	tbl := factory()
	s.tables[t] = tbl
	return tbl
}

// Spawn creates a new entity with the provided components.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	s.lastId++
	id := s.lastId
	count := 0
	for _, c := range components {
		if s.tableFor(componentType(c)).put(id, c) {
			count++
		}
	}
	s.alive.Put(id, count)
	return id
}

// Alive reports whether the entity exists.
func (s *Storage) Alive(id EntityId) bool {
	return s.alive.Has(id)
}

// Delete removes the entity and all of its components. Deleting an unknown
// entity is a no-op.
func (s *Storage) Delete(id EntityId) {
	if !s.alive.Has(id) {
		return
	}
	for _, tbl := range s.tables {
		tbl.remove(id)
	}
	s.alive.Del(id)
}

// AddComponent attaches a component to an existing entity, replacing any
// component of the same type. It returns false if the entity does not exist.
func (s *Storage) AddComponent(id EntityId, component any) bool {
	count, ok := s.alive.Get(id)
	if !ok {
		return false
	}
	if s.tableFor(componentType(component)).put(id, component) {
		s.alive.Put(id, count+1)
	}
	return true
}

// RemoveComponent detaches a component. An entity left without components is
// deleted.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) {
	count, ok := s.alive.Get(id)
	if !ok {
		return
	}
	tbl, ok := s.tables[compType]
	if !ok || !tbl.remove(id) {
		return
	}
	if count <= 1 {
		s.alive.Del(id)
		return
	}
	s.alive.Put(id, count-1)
}

// GetComponent returns a pointer to the entity's component of the given type,
// or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	tbl, ok := s.tables[compType]
	if !ok {
		return nil
	}
	return tbl.get(id)
}

// HasComponent checks if an entity has a specific component type.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	tbl, ok := s.tables[compType]
	return ok && tbl.has(id)
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the typed component, or nil when it is missing.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	c, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return c
}

// StorageStats summarises the contents of a Storage.
type StorageStats struct {
	EntityCount    int
	SingletonCount int
	Components     []ComponentStats
	SingletonTypes []string
}

// ComponentStats counts the live components of one type.
type ComponentStats struct {
	Type  string
	Count int
}

// CollectStats returns a snapshot of entity, component and singleton counts,
// sorted by type name.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		EntityCount:    s.alive.Len(),
		SingletonCount: len(s.singletons),
	}

	for t, tbl := range s.tables {
		stats.Components = append(stats.Components, ComponentStats{
			Type:  t.String(),
			Count: tbl.len(),
		})
	}
	sort.Slice(stats.Components, func(i, j int) bool {
		return stats.Components[i].Type < stats.Components[j].Type
	})

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	sort.Strings(stats.SingletonTypes)

	return stats
}
