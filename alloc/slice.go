package alloc

import "unsafe"

// MakeSlice allocates a zeroed []T of length and capacity n through a.
// It returns nil for n <= 0. Zero-sized element types are not tracked.
func MakeSlice[T any](a *Allocator, n int, name string) []T {
	if n <= 0 {
		return nil
	}
	s := make([]T, n)
	if size := sizeOf[T](n); size > 0 {
		a.track(unsafe.Pointer(unsafe.SliceData(s)), size, name, s)
	}
	return s
}

// ReallocSlice moves s into a new slice of length and capacity n,
// copying the first min(len(s), n) elements, and frees s.
func ReallocSlice[T any](a *Allocator, s []T, n int, name string) []T {
	out := MakeSlice[T](a, n, name)
	copy(out, s)
	FreeSlice(a, s)
	return out
}

// FreeSlice releases a slice obtained from MakeSlice or ReallocSlice.
// Freeing a slice twice, or one the allocator never produced, is fatal.
func FreeSlice[T any](a *Allocator, s []T) {
	if cap(s) == 0 || sizeOf[T](1) == 0 {
		return
	}
	a.untrack(unsafe.Pointer(unsafe.SliceData(s)))
}

func sizeOf[T any](n int) int {
	var zero T
	return int(unsafe.Sizeof(zero)) * n
}
