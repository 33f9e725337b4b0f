package mmap

import (
	"sync/atomic"
)

// Mapping is an anonymous read-write memory reservation.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	data   []byte
	size   int
	huge   bool
	closed atomic.Bool
	// unmap is the platform-specific function to release the memory.
	unmap func([]byte) error
}

type mapOptions struct {
	largePages bool
}

// MapOption configures MapAnon.
type MapOption func(*mapOptions)

// WithLargePages requests huge-page backing, falling back to regular pages.
func WithLargePages(enabled bool) MapOption {
	return func(o *mapOptions) {
		o.largePages = enabled
	}
}

// MapAnon reserves and commits size bytes of zeroed memory.
// The size is rounded up to the page granularity actually used.
func MapAnon(size int, opts ...MapOption) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	var o mapOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.largePages {
		hugeSize := RoundUp(size, LargePageSize)
		if data, unmap, err := osMapAnon(hugeSize, true); err == nil {
			return &Mapping{data: data, size: hugeSize, huge: true, unmap: unmap}, nil
		}
	}

	size = RoundUp(size, PageSize())
	data, unmap, err := osMapAnon(size, false)
	if err != nil {
		return nil, err
	}

	return &Mapping{data: data, size: size, unmap: unmap}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// HugePages reports whether the mapping is backed by large pages.
func (m *Mapping) HugePages() bool {
	return m.huge
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(m.data, pattern)
}
