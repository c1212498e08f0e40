package ecs

import "reflect"

// Singleton provides access to a single component instance that is not
// associated with any entity. Use this for the board, the score and other
// session-wide state.
type Singleton[T any] struct {
	storage *Storage
	value   *T
}

// NewSingleton creates a Singleton accessor for the given storage. If the
// singleton does not exist yet it is created from the initializer, or from
// the zero value when none is given. The singleton exists after the call.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	t := reflect.TypeFor[T]()
	if _, ok := storage.singletons[t]; !ok {
		value := new(T)
		if len(initializer) > 0 {
			*value = initializer[0]
		}
		storage.singletons[t] = value
	}

	s := &Singleton[T]{}
	s.Init(storage)
	return s
}

// Init binds the Singleton to a storage. The Scheduler calls this for every
// Singleton field of a registered system.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.value = nil
	s.lookup()
}

func (s *Singleton[T]) lookup() {
	if s.storage == nil {
		return
	}
	if v, ok := s.storage.singletons[reflect.TypeFor[T]()]; ok {
		s.value = v.(*T)
	}
}

// Get returns a pointer to the singleton component, or nil if it has not been
// added to storage.
func (s *Singleton[T]) Get() *T {
	if s.value == nil {
		s.lookup()
	}
	return s.value
}

