package menu

import "sync"

// cardLocks serializes regenerations per card so a scheduled tick and a
// manual trigger for the same card cannot interleave their delete/write
// steps. Distinct cards proceed in parallel.
type cardLocks struct {
	mu sync.Mutex
	m  map[uint]*sync.Mutex
}

func newCardLocks() *cardLocks {
	return &cardLocks{m: make(map[uint]*sync.Mutex)}
}

func (l *cardLocks) lock(cardID uint) func() {
	l.mu.Lock()
	cm, ok := l.m[cardID]
	if !ok {
		cm = &sync.Mutex{}
		l.m[cardID] = cm
	}
	l.mu.Unlock()

	cm.Lock()
	return cm.Unlock
}
