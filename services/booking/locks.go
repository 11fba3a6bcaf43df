package booking

import "sync"

// entityLocks serializes read-modify-write operations per booking id.
// Without it, concurrent completions or reviews on the same booking can
// double-apply side effects (earnings, running mean ratings).
type entityLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[string]*lockEntry)}
}

// Acquire blocks until the per-id lock is held and returns the release
// function. Entries are reference counted so the map does not grow with
// every booking ever touched.
func (l *entityLocks) Acquire(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &lockEntry{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
