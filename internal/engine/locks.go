package engine

import "sync"

// contextLocks is a keyed mutex: one lock per context id, created on first
// use and dropped once no goroutine holds or waits for it.
type contextLocks struct {
	mu   sync.Mutex
	held map[int64]*contextLock
}

type contextLock struct {
	mu   sync.Mutex
	refs int
}

func newContextLocks() *contextLocks {
	return &contextLocks{held: make(map[int64]*contextLock)}
}

// lock blocks until the caller owns contextID and returns the release func.
func (l *contextLocks) lock(contextID int64) func() {
	l.mu.Lock()
	cl, ok := l.held[contextID]
	if !ok {
		cl = &contextLock{}
		l.held[contextID] = cl
	}
	cl.refs++
	l.mu.Unlock()

	cl.mu.Lock()

	return func() {
		cl.mu.Unlock()

		l.mu.Lock()
		cl.refs--
		if cl.refs == 0 {
			delete(l.held, contextID)
		}
		l.mu.Unlock()
	}
}

// size reports how many contexts currently have a lock entry.
func (l *contextLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}
