package pipeline

import "sync"

// lockSet tracks post IDs currently being processed so overlapping cycles
// never work the same post twice.
type lockSet struct {
	mu sync.Mutex
	m  map[string]struct{}
}

func newLockSet() *lockSet {
	return &lockSet{m: make(map[string]struct{})}
}

// TryAcquire claims the ID, returning false when another worker holds it.
func (l *lockSet) TryAcquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.m[id]; held {
		return false
	}
	l.m[id] = struct{}{}
	return true
}

func (l *lockSet) Release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.m, id)
}
