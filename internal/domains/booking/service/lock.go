package service

import (
	"slices"
	"sync"
)

type slotLock struct {
	sync.Mutex
	refs int
}

// slotLocks serializes mutations per (day, location) slot inside this process.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: map[string]*slotLock{}}
}

func slotKey(day, locationID string) string {
	return day + "|" + locationID
}

// Lock acquires every key in sorted order and returns the matching unlock.
func (s *slotLocks) Lock(keys ...string) func() {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*slotLock, 0, len(keys))

	for _, key := range keys {
		s.mu.Lock()
		lock, ok := s.locks[key]
		if !ok {
			lock = &slotLock{}
			s.locks[key] = lock
		}
		lock.refs++
		s.mu.Unlock()

		lock.Lock()
		held = append(held, lock)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()

			s.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(s.locks, keys[i])
			}
			s.mu.Unlock()
		}
	}
}

func (s *slotLocks) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.locks)
}
