package engine

import "sync"

// itemLocks serializes read-modify-write cycles per item id. Entries are
// dropped once no goroutine holds or waits on them. lockAll excludes every
// item at once for whole-list replacement.
type itemLocks struct {
	all   sync.RWMutex
	mu    sync.Mutex
	locks map[string]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[string]*itemLock)}
}

// lock blocks until the item's mutex is held and returns its release func.
// Callers must not hold another item lock.
func (l *itemLocks) lock(id string) func() {
	l.all.RLock()

	l.mu.Lock()
	il, ok := l.locks[id]
	if !ok {
		il = &itemLock{}
		l.locks[id] = il
	}
	il.refs++
	l.mu.Unlock()

	il.mu.Lock()

	return func() {
		il.mu.Unlock()

		l.mu.Lock()
		il.refs--
		if il.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()

		l.all.RUnlock()
	}
}

// lockAll waits for every item lock to be released and holds off new ones
// until the returned func is called.
func (l *itemLocks) lockAll() func() {
	l.all.Lock()
	return l.all.Unlock
}

func (l *itemLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
