package container

import (
	"github.com/hupe1980/substrate/alloc"
	"github.com/hupe1980/substrate/diag"
)

// Array is a contiguous array with a capacity fixed at construction.
type Array[T any] struct {
	buf  []T
	n    int
	name string
	a    *alloc.Allocator
	diag diag.Reporter
}

// NewArray allocates an empty array that can hold capacity elements.
func NewArray[T any](a *alloc.Allocator, name string, capacity int) *Array[T] {
	if capacity <= 0 {
		a.Reporter().Fatal("container: invalid capacity", "name", name, "capacity", capacity)
	}
	return &Array[T]{
		buf:  alloc.MakeSlice[T](a, capacity, name),
		name: name,
		a:    a,
		diag: a.Reporter(),
	}
}

// Len returns the number of elements.
func (r *Array[T]) Len() int { return r.n }

// Cap returns the fixed capacity.
func (r *Array[T]) Cap() int { return len(r.buf) }

// Full reports whether no further element fits.
func (r *Array[T]) Full() bool { return r.n == len(r.buf) }

// Push appends x. Pushing onto a full array is fatal.
func (r *Array[T]) Push(x T) {
	if r.n == len(r.buf) {
		r.diag.Fatal("container: array capacity exceeded", "name", r.name, "capacity", len(r.buf))
	}
	r.buf[r.n] = x
	r.n++
}

// Pop removes and returns the last element. Popping an empty array is fatal.
func (r *Array[T]) Pop() T {
	if r.n == 0 {
		r.diag.Fatal("container: pop of empty array", "name", r.name)
	}
	r.n--
	x := r.buf[r.n]
	var zero T
	r.buf[r.n] = zero
	return x
}

// At returns the element at i.
func (r *Array[T]) At(i int) T {
	r.check(i)
	return r.buf[i]
}

// Set replaces the element at i.
func (r *Array[T]) Set(i int, x T) {
	r.check(i)
	r.buf[i] = x
}

// Slice returns the live elements.
func (r *Array[T]) Slice() []T {
	return r.buf[:r.n:r.n]
}

// Clear removes all elements.
func (r *Array[T]) Clear() {
	clear(r.buf[:r.n])
	r.n = 0
}

// Free returns the storage to the allocator.
func (r *Array[T]) Free() {
	alloc.FreeSlice(r.a, r.buf)
	r.buf = nil
	r.n = 0
}

func (r *Array[T]) check(i int) {
	if i < 0 || i >= r.n {
		r.diag.Fatal("container: index out of range", "name", r.name, "index", i, "len", r.n)
	}
}
