package concurrency

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/substrate/diag"
)

type mpscSlot[T any] struct {
	value T
	ready atomic.Bool
}

// MPSCQueue is a bounded multi-producer single-consumer queue.
//
// Producers claim a ring position by advancing tail with a CAS; the winner
// owns that slot, writes the value and sets the slot's ready flag. The
// consumer waits for the flag, reads the value, clears the flag and only
// then advances head, which is what lets a producer reuse the slot.
type MPSCQueue[T any] struct {
	_     cpu.CacheLinePad
	tail  atomic.Uint64
	_     cpu.CacheLinePad
	head  atomic.Uint64
	_     cpu.CacheLinePad
	mask  uint64
	slots []mpscSlot[T]
}

// NewMPSCQueue creates a queue with size slots.
// A size that is not a power of two is fatal.
func NewMPSCQueue[T any](size int, r diag.Reporter) *MPSCQueue[T] {
	checkSize(size, r)
	return &MPSCQueue[T]{
		mask:  uint64(size - 1),
		slots: make([]mpscSlot[T], size),
	}
}

// Push enqueues v. It returns false if the queue is full.
// Safe for concurrent use by any number of producers.
func (q *MPSCQueue[T]) Push(v T) bool {
	size := uint64(len(q.slots))
	for {
		// head before tail: head never passes tail, so t-h cannot wrap.
		h := q.head.Load()
		t := q.tail.Load()
		if t-h >= size {
			return false
		}
		if q.tail.CompareAndSwap(t, t+1) {
			slot := &q.slots[t&q.mask]
			slot.value = v
			slot.ready.Store(true)
			return true
		}
	}
}

// Pop dequeues the oldest item. It returns false if the queue is empty or
// the oldest claimed slot has not been published yet.
// Only one goroutine at a time may call Pop.
func (q *MPSCQueue[T]) Pop() (T, bool) {
	var zero T
	h := q.head.Load()
	slot := &q.slots[h&q.mask]
	if !slot.ready.Load() {
		return zero, false
	}
	v := slot.value
	slot.value = zero
	slot.ready.Store(false)
	q.head.Store(h + 1)
	return v, true
}

// Len returns the number of claimed slots, including ones still being written.
func (q *MPSCQueue[T]) Len() int {
	h := q.head.Load()
	return int(q.tail.Load() - h) //nolint:gosec // bounded by the slot count
}

// Cap returns the number of slots.
func (q *MPSCQueue[T]) Cap() int {
	return len(q.slots)
}
