package concurrency

import (
	"math/bits"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/substrate/diag"
)

// DefaultMaxThreads sizes the wait queue of a Spinlock created with a
// non-positive thread count.
const DefaultMaxThreads = 64

type waiter struct {
	id      ThreadID
	waiting atomic.Bool
}

// Spinlock is a FIFO-fair, non-reentrant mutual exclusion lock.
//
// Ownership is tracked per ThreadID. At most maxThreads goroutines may wait
// at the same time; additional waiters spin until a queue slot frees up.
type Spinlock struct {
	_       cpu.CacheLinePad
	owner   atomic.Uint64
	_       cpu.CacheLinePad
	waiters *MPSCQueue[*waiter]
	diag    diag.Reporter
}

// NewSpinlock creates a lock whose wait queue holds maxThreads waiters,
// rounded up to a power of two. Contract violations are reported to r.
func NewSpinlock(maxThreads int, r diag.Reporter) *Spinlock {
	if maxThreads <= 0 {
		maxThreads = DefaultMaxThreads
	}
	r = diag.Or(r)
	size := 1 << bits.Len(uint(maxThreads-1))
	return &Spinlock{waiters: NewMPSCQueue[*waiter](size, r), diag: r}
}

// TryAcquire takes the lock for id if it is free.
func (l *Spinlock) TryAcquire(id ThreadID) bool {
	if id == NoOwner {
		l.diag.Fatal("concurrency: spinlock owner must be non-zero")
	}
	return l.owner.CompareAndSwap(uint64(NoOwner), uint64(id))
}

// Acquire takes the lock for id, waiting behind earlier waiters.
func (l *Spinlock) Acquire(id ThreadID) {
	if l.TryAcquire(id) {
		return
	}

	w := &waiter{id: id}
	w.waiting.Store(true)

	var b Backoff
	for !l.waiters.Push(w) {
		b.Wait()
	}

	b.Reset()
	for {
		if !w.waiting.Load() {
			return
		}
		// The lock went free with nobody left to hand it over: claim it
		// and serve the head of the queue ourselves.
		if l.owner.Load() == uint64(NoOwner) && l.owner.CompareAndSwap(uint64(NoOwner), uint64(id)) {
			next, ok := l.waiters.Pop()
			if ok && next == w {
				return
			}
			l.handoff(next, ok)
		}
		b.Wait()
	}
}

// Release gives up the lock. It reports false and does nothing if id is
// not the current owner.
func (l *Spinlock) Release(id ThreadID) bool {
	if l.owner.Load() != uint64(id) || id == NoOwner {
		return false
	}
	l.handoff(l.waiters.Pop())
	return true
}

func (l *Spinlock) handoff(next *waiter, ok bool) {
	if !ok {
		l.owner.Store(uint64(NoOwner))
		return
	}
	l.owner.Store(uint64(next.id))
	next.waiting.Store(false)
}

// Owner returns the current owner, or NoOwner.
func (l *Spinlock) Owner() ThreadID {
	return ThreadID(l.owner.Load())
}

// Waiting returns the number of queued waiters.
func (l *Spinlock) Waiting() int {
	return l.waiters.Len()
}
