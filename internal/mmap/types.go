package mmap

import "errors"

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

// LargePageSize is the granularity large-page reservations are rounded to.
const LargePageSize = 2 << 20

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested size is not positive.
	ErrInvalidSize = errors.New("mmap: invalid size")
)

// PageSize returns the OS page size.
func PageSize() int {
	return osPageSize()
}

// RoundUp rounds size up to a multiple of granularity, which must be a power of two.
func RoundUp(size, granularity int) int {
	return (size + granularity - 1) &^ (granularity - 1)
}
