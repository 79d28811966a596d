package subscriptions

import "sync"

// userLocks hands out one mutex per user so that operations for different
// users never contend.
type userLocks struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the user's mutex and returns its release function.
func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
