package arena

import "unsafe"

// Scratch is a typed temporary buffer pushed onto an arena.
// T must not contain Go pointers.
type Scratch[T any] struct {
	Items []T

	arena *Arena
	size  uint64
}

// NewScratch pushes a zeroed buffer of count elements of T.
// Release pops it again; scratches must be released in reverse order of
// creation on each goroutine.
func NewScratch[T any](a *Arena, count int) Scratch[T] {
	if count <= 0 {
		return Scratch[T]{arena: a}
	}

	var zero T
	size := uint64(unsafe.Sizeof(zero)) * uint64(count)
	p, consumed := a.PushAligned(size, uint64(unsafe.Alignof(zero)))

	items := unsafe.Slice((*T)(p), count)
	clear(items)

	return Scratch[T]{Items: items, arena: a, size: consumed}
}

// Release pops the buffer. Calling Release more than once has no effect.
func (s *Scratch[T]) Release() {
	if s.size == 0 {
		return
	}
	s.arena.Pop(s.size)
	s.size = 0
	s.Items = nil
}

// Len returns the number of elements.
func (s *Scratch[T]) Len() int {
	return len(s.Items)
}
