package rwmutex

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestReadLockAllowsConcurrentReaders(t *testing.T) {
	m := New()
	var active atomic.Int32
	var maxActive atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ReadLock()
			defer m.ReadUnlock()
			n := active.Add(1)
			for {
				cur := maxActive.Load()
				if n <= cur || maxActive.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	if maxActive.Load() < 2 {
		t.Fatalf("expected multiple concurrent readers, saw max %d", maxActive.Load())
	}
}

func TestWriteLockExcludesReaders(t *testing.T) {
	m := New()
	var writerActive atomic.Bool
	var violated atomic.Bool
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		tok := m.WriteLock()
		writerActive.Store(true)
		time.Sleep(20 * time.Millisecond)
		writerActive.Store(false)
		if err := m.WriteUnlock(tok); err != nil {
			t.Error(err)
		}
	}()
	time.Sleep(5 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.ReadLock()
		defer m.ReadUnlock()
		if writerActive.Load() {
			violated.Store(true)
		}
	}()
	wg.Wait()

	if violated.Load() {
		t.Fatal("reader observed writer holding the lock concurrently")
	}
}

func TestWriteUnlockWrongTokenFails(t *testing.T) {
	m := New()
	tok := m.WriteLock()
	defer m.WriteUnlock(tok)

	err := m.WriteUnlock(Token(uint64(tok) + 1))
	if err == nil {
		t.Fatal("expected LockOwnershipError for mismatched token")
	}
	if _, ok := err.(*LockOwnershipError); !ok {
		t.Fatalf("expected *LockOwnershipError, got %T", err)
	}
}

func TestWriteUnlockWithoutLockFails(t *testing.T) {
	m := New()
	err := m.WriteUnlock(Token(1))
	if err == nil {
		t.Fatal("expected LockOwnershipError when no write lock is held")
	}
	lockErr, ok := err.(*LockOwnershipError)
	if !ok || !lockErr.NoOwner {
		t.Fatalf("expected NoOwner error, got %#v", err)
	}
}

func TestWriteLockIsExclusive(t *testing.T) {
	m := New()
	var counter int
	var wg sync.WaitGroup
	const n = 50

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := m.WriteLock()
			counter++
			m.WriteUnlock(tok)
		}()
	}
	wg.Wait()

	if counter != n {
		t.Fatalf("expected counter == %d, got %d", n, counter)
	}
}
