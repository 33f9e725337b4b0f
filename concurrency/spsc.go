package concurrency

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/substrate/diag"
)

// SPSCQueue is a bounded single-producer single-consumer queue of pointers.
//
// A slot is empty while it holds nil. Push publishes with an atomic store,
// Pop takes with an atomic swap, so the producer's writes to *T happen before
// the consumer's reads without any further locking.
type SPSCQueue[T any] struct {
	_     cpu.CacheLinePad
	tail  uint64 // producer only
	_     cpu.CacheLinePad
	head  uint64 // consumer only
	_     cpu.CacheLinePad
	mask  uint64
	slots []atomic.Pointer[T]
}

// NewSPSCQueue creates a queue with size slots.
// A size that is not a power of two is fatal.
func NewSPSCQueue[T any](size int, r diag.Reporter) *SPSCQueue[T] {
	checkSize(size, r)
	return &SPSCQueue[T]{
		mask:  uint64(size - 1),
		slots: make([]atomic.Pointer[T], size),
	}
}

// Push enqueues v. It returns false if the queue is full or v is nil.
// Only the producer goroutine may call Push.
func (q *SPSCQueue[T]) Push(v *T) bool {
	if v == nil {
		return false
	}
	slot := &q.slots[q.tail&q.mask]
	if slot.Load() != nil {
		return false
	}
	slot.Store(v)
	q.tail++
	return true
}

// Pop dequeues the oldest item. It returns false if the queue is empty.
// Only the consumer goroutine may call Pop.
func (q *SPSCQueue[T]) Pop() (*T, bool) {
	v := q.slots[q.head&q.mask].Swap(nil)
	if v == nil {
		return nil, false
	}
	q.head++
	return v, true
}

// Cap returns the number of slots.
func (q *SPSCQueue[T]) Cap() int {
	return len(q.slots)
}

func checkSize(size int, r diag.Reporter) {
	if size <= 0 || size&(size-1) != 0 {
		diag.Or(r).Fatal("concurrency: queue size must be a power of two", "size", size)
	}
}
