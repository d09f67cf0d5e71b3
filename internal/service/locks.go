package service

import "sync"

// SessionLocks serializes read-modify-write cycles per session so two
// concurrent requests for the same session cannot interleave between load
// and save. Different sessions never block each other.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSessionLocks creates an empty lock registry.
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the given session and returns its unlock
// function.
func (l *SessionLocks) Lock(sessionID string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
