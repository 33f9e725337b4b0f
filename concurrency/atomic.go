package concurrency

import "sync/atomic"

// Integer is the set of types Atomic supports.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Atomic is an atomic integer of type T. The zero value is zero.
//
// All operations are sequentially consistent.
type Atomic[T Integer] struct {
	_ noCopy
	v atomic.Uint64
}

// Load atomically loads the value.
func (a *Atomic[T]) Load() T { return T(a.v.Load()) }

// Store atomically stores x.
func (a *Atomic[T]) Store(x T) { a.v.Store(uint64(x)) }

// Swap atomically stores x and returns the previous value.
func (a *Atomic[T]) Swap(x T) T { return T(a.v.Swap(uint64(x))) }

// CompareAndSwap executes the compare-and-swap operation for the value.
func (a *Atomic[T]) CompareAndSwap(old, x T) bool {
	return a.v.CompareAndSwap(uint64(old), uint64(x))
}

// Add atomically adds delta and returns the new value, wrapping in T.
func (a *Atomic[T]) Add(delta T) T {
	for {
		old := a.v.Load()
		x := T(old) + delta
		if a.v.CompareAndSwap(old, uint64(x)) {
			return x
		}
	}
}

// noCopy may be embedded into structs which must not be copied after first use.
// See go vet's copylocks checker.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
