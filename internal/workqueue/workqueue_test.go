package workqueue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitAwaitRunsAllTasks(t *testing.T) {
	q := New(4, nil)
	defer func() {
		q.Shutdown()
		q.Wait()
	}()

	var counter atomic.Int64
	const n = 200
	for i := 0; i < n; i++ {
		q.Submit(func() { counter.Add(1) })
	}
	q.Await()

	if got := counter.Load(); got != n {
		t.Fatalf("expected %d completed tasks, got %d", n, got)
	}
}

func TestAwaitWaitsForInFlightWork(t *testing.T) {
	q := New(2, nil)
	defer func() {
		q.Shutdown()
		q.Wait()
	}()

	var done atomic.Bool
	q.Submit(func() {
		time.Sleep(30 * time.Millisecond)
		done.Store(true)
	})
	q.Await()

	if !done.Load() {
		t.Fatal("Await returned before the in-flight task finished")
	}
}

func TestPanicInTaskDoesNotWedgeQueue(t *testing.T) {
	q := New(2, nil)
	defer func() {
		q.Shutdown()
		q.Wait()
	}()

	q.Submit(func() { panic("boom") })
	var ran atomic.Bool
	q.Submit(func() { ran.Store(true) })
	q.Await()

	if !ran.Load() {
		t.Fatal("task submitted after a panicking task never ran")
	}
}

func TestShutdownAbandonsUnstartedTasks(t *testing.T) {
	q := New(1, nil)

	block := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	q.Submit(func() {
		defer wg.Done()
		<-block
	})

	var secondRan atomic.Bool
	q.Submit(func() { secondRan.Store(true) })

	// Give the first task time to be picked up by the single worker before
	// shutdown so the second task is guaranteed to still be queued.
	time.Sleep(10 * time.Millisecond)
	q.Shutdown()
	close(block)
	wg.Wait()
	q.Wait()

	if secondRan.Load() {
		t.Fatal("expected the still-queued second task to be abandoned on shutdown")
	}
}

func TestNewWithZeroThreadsStartsEmpty(t *testing.T) {
	q := New(0, nil)
	defer func() {
		q.Shutdown()
		q.Wait()
	}()
	if len(q.tasks) != 0 {
		t.Fatal("queue should start empty")
	}
}
