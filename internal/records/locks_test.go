package records

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocksSerializeSamePath(t *testing.T) {
	var l Locks
	path := filepath.Join(t.TempDir(), RecordFileName)

	unlock := l.Lock(path)

	acquired := make(chan struct{})
	go func() {
		u := l.Lock(filepath.Join(filepath.Dir(path), ".", RecordFileName))
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestLocksIndependentPaths(t *testing.T) {
	l := NewLocks()
	dir := t.TempDir()

	unlockA := l.Lock(filepath.Join(dir, "a"))
	defer unlockA()

	done := make(chan struct{})
	go func() {
		l.Lock(filepath.Join(dir, "b"))()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on unrelated path blocked")
	}
}

func TestLocksReleaseEntries(t *testing.T) {
	l := NewLocks()
	dir := t.TempDir()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock(filepath.Join(dir, "x"))()
		}()
	}
	wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.paths)
}
