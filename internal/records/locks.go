package records

import (
	"path/filepath"
	"sync"
)

// Locks serializes structural writes per record file path.
// The zero value is ready to use.
type Locks struct {
	mu    sync.Mutex
	paths map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocks returns an empty lock registry.
func NewLocks() *Locks {
	return &Locks{}
}

// Lock blocks until path is free and returns the matching unlock function.
func (l *Locks) Lock(path string) func() {
	key := lockKey(path)

	l.mu.Lock()
	if l.paths == nil {
		l.paths = make(map[string]*pathLock)
	}
	pl, ok := l.paths[key]
	if !ok {
		pl = &pathLock{}
		l.paths[key] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()

	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.paths, key)
		}
		l.mu.Unlock()
	}
}

func lockKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
