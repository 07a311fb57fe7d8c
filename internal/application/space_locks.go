package application

import "sync"

// spaceLocks serializes admission for a single space. Requests for
// different spaces share no state and proceed in parallel; requests for the
// same space hold its mutex across the conflict check, quota check and
// persistence so the read-then-write sequence is atomic in-process.
type spaceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSpaceLocks() *spaceLocks {
	return &spaceLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the space's mutex is held and returns its release
// function. Mutexes live for the process lifetime; the map is bounded by
// the number of distinct spaces seen.
func (l *spaceLocks) acquire(spaceID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[spaceID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[spaceID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
