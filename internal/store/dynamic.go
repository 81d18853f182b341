package store

import "github.com/TaniGit/gerbera/internal/core"

// RegisterDynamicContainer adds or replaces a synthetic container
// produced by a saved search. id must be negative; dynamic containers
// never appear in the object table and are re-materialized by the
// caller (the search layer) on every query, not persisted here.
func (s *Store) RegisterDynamicContainer(id int, obj core.Object) error {
	if id >= 0 {
		return core.ConstraintViolationf("dynamic container id %d must be negative", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dynamic[id] = obj
	return nil
}

// UnregisterDynamicContainer drops a synthetic container from the
// in-memory map.
func (s *Store) UnregisterDynamicContainer(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dynamic, id)
}

func (s *Store) loadDynamicLocked(id int) (*core.Object, error) {
	obj, ok := s.dynamic[id]
	if !ok {
		return nil, core.NotFoundf("dynamic container %d", id)
	}
	clone := obj.Clone()
	return clone, nil
}
