package lock

import "sync"

// Keyed provides mutual exclusion per string key. Used to serialize
// selection generation per (user, date), the quota check-then-insert per
// (user, date), and the mutual-match update per unordered user pair.
//
// Entries are reference counted and removed once the last holder releases,
// so the map does not grow with the key space.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Lock blocks until the key is held and returns the matching unlock func.
//
//	unlock := k.Lock("selection:42:2024-05-01")
//	defer unlock()
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
