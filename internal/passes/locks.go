package passes

import "sync"

// keyedLocks serializes transitions per pass id: a decide racing a scan, or
// two scans racing each other, take turns instead of interleaving.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*entry)}
}

// lock acquires the lock for key and returns its release func. Entries are
// reference-counted and removed once nobody holds or waits on them.
func (k *keyedLocks) lock(key string) func() {
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
