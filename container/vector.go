package container

import (
	"github.com/hupe1980/substrate/alloc"
	"github.com/hupe1980/substrate/diag"
)

const minVectorCap = 8

// Vector is a growable contiguous array of T.
// It is not safe for concurrent use.
type Vector[T any] struct {
	buf  []T // len(buf) == capacity
	n    int
	name string
	a    *alloc.Allocator
	diag diag.Reporter
}

// NewVector creates an empty vector with room for capacity elements.
// Storage is allocated through a and tagged with name.
func NewVector[T any](a *alloc.Allocator, name string, capacity int) *Vector[T] {
	v := &Vector[T]{name: name, a: a, diag: a.Reporter()}
	if capacity > 0 {
		v.buf = alloc.MakeSlice[T](a, capacity, name)
	}
	return v
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return v.n }

// Cap returns the allocated capacity.
func (v *Vector[T]) Cap() int { return len(v.buf) }

// Empty reports whether the vector holds no elements.
func (v *Vector[T]) Empty() bool { return v.n == 0 }

// Push appends x, doubling the capacity when full.
func (v *Vector[T]) Push(x T) {
	if v.n == len(v.buf) {
		v.grow(v.n + 1)
	}
	v.buf[v.n] = x
	v.n++
}

// Pop removes and returns the last element. Popping an empty vector is fatal.
func (v *Vector[T]) Pop() T {
	if v.n == 0 {
		v.diag.Fatal("container: pop of empty vector", "name", v.name)
	}
	v.n--
	x := v.buf[v.n]
	var zero T
	v.buf[v.n] = zero
	return x
}

// Last returns the last element. It is fatal on an empty vector.
func (v *Vector[T]) Last() T {
	return v.At(v.n - 1)
}

// At returns the element at i.
func (v *Vector[T]) At(i int) T {
	v.check(i)
	return v.buf[i]
}

// Ref returns a pointer to the element at i, valid until the next growth.
func (v *Vector[T]) Ref(i int) *T {
	v.check(i)
	return &v.buf[i]
}

// Set replaces the element at i.
func (v *Vector[T]) Set(i int, x T) {
	v.check(i)
	v.buf[i] = x
}

// Slice returns the live elements. The slice aliases the vector's storage.
func (v *Vector[T]) Slice() []T {
	return v.buf[:v.n:v.n]
}

// Reserve ensures room for at least n elements.
func (v *Vector[T]) Reserve(n int) {
	if n > len(v.buf) {
		v.realloc(n)
	}
}

// Resize sets the length to n, zero-filling new elements.
func (v *Vector[T]) Resize(n int) {
	if n < 0 {
		v.diag.Fatal("container: negative size", "name", v.name, "size", n)
	}
	if n > len(v.buf) {
		v.grow(n)
	}
	if n < v.n {
		clear(v.buf[n:v.n])
	}
	v.n = n
}

// SwapRemove removes the element at i by moving the last element into its
// place. It returns the former index of the moved element, or -1 if i was last.
func (v *Vector[T]) SwapRemove(i int) int {
	v.check(i)
	last := v.n - 1
	moved := -1
	if i != last {
		v.buf[i] = v.buf[last]
		moved = last
	}
	var zero T
	v.buf[last] = zero
	v.n = last
	return moved
}

// Clear removes all elements and keeps the storage.
func (v *Vector[T]) Clear() {
	clear(v.buf[:v.n])
	v.n = 0
}

// Free returns the storage to the allocator. The vector is empty afterwards
// and may be reused.
func (v *Vector[T]) Free() {
	alloc.FreeSlice(v.a, v.buf)
	v.buf = nil
	v.n = 0
}

func (v *Vector[T]) grow(need int) {
	c := max(len(v.buf)*2, minVectorCap)
	for c < need {
		c *= 2
	}
	v.realloc(c)
}

func (v *Vector[T]) realloc(c int) {
	if len(v.buf) == 0 {
		v.buf = alloc.MakeSlice[T](v.a, c, v.name)
		return
	}
	v.buf = alloc.ReallocSlice(v.a, v.buf, c, v.name)
}

func (v *Vector[T]) check(i int) {
	if i < 0 || i >= v.n {
		v.diag.Fatal("container: index out of range", "name", v.name, "index", i, "len", v.n)
	}
}
