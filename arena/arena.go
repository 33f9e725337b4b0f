package arena

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/substrate/alloc"
	"github.com/hupe1980/substrate/diag"
	"github.com/hupe1980/substrate/internal/conv"
	"github.com/hupe1980/substrate/internal/mem"
	"github.com/hupe1980/substrate/internal/mmap"
)

// Config describes one arena.
type Config struct {
	// Name tags diagnostics.
	Name string
	// Capacity is the requested size in bytes, rounded up to the page size.
	Capacity int
	// LargePages attempts a huge-page backed reservation first.
	LargePages bool
	// Acquirer, if set, is charged with the reserved size.
	Acquirer alloc.MemoryAcquirer
}

// Stats tracks arena memory usage metrics.
type Stats struct {
	Capacity  uint64
	Tail      uint64
	HighWater uint64
	Pushes    uint64
	HugePages bool
}

// Arena is a bump allocator over a fixed region.
type Arena struct {
	name     string
	mapping  *mmap.Mapping
	base     unsafe.Pointer
	buf      []byte
	capacity uint64
	acquirer alloc.MemoryAcquirer
	diag     diag.Reporter

	_         cpu.CacheLinePad
	tail      atomic.Uint64
	_         cpu.CacheLinePad
	highWater atomic.Uint64
	pushes    atomic.Uint64
}

// New reserves and commits the arena's region.
// A region the OS refuses, or the memory budget does not cover, is fatal.
func New(cfg Config, r diag.Reporter) *Arena {
	r = diag.Or(r)
	if cfg.Name == "" {
		cfg.Name = "arena"
	}
	if cfg.Capacity <= 0 {
		r.Fatal("arena: invalid capacity", "arena", cfg.Name, "capacity", cfg.Capacity)
	}

	m, err := mmap.MapAnon(cfg.Capacity, mmap.WithLargePages(cfg.LargePages))
	if err != nil {
		r.Fatal("arena: reserve failed", "arena", cfg.Name, "capacity", cfg.Capacity, "error", err)
	}

	if cfg.Acquirer != nil && !cfg.Acquirer.TryAcquireMemory(int64(m.Size())) {
		_ = m.Close()
		r.Fatal("arena: memory limit exceeded", "arena", cfg.Name, "capacity", m.Size())
	}

	capacity, err := conv.IntToUint64(m.Size())
	if err != nil {
		r.Fatal("arena: invalid capacity", "arena", cfg.Name, "error", err)
	}

	buf := m.Bytes()
	return &Arena{
		name:     cfg.Name,
		mapping:  m,
		base:     unsafe.Pointer(unsafe.SliceData(buf)), //nolint:gosec // unsafe is required for arena implementation
		buf:      buf,
		capacity: capacity,
		acquirer: cfg.Acquirer,
		diag:     r,
	}
}

// Name returns the diagnostic name.
func (a *Arena) Name() string { return a.name }

// Capacity returns the reserved size in bytes.
func (a *Arena) Capacity() uint64 { return a.capacity }

// Tail returns the current offset.
func (a *Arena) Tail() uint64 { return a.tail.Load() }

// Remaining returns the bytes left before exhaustion.
func (a *Arena) Remaining() uint64 {
	tail := a.tail.Load()
	if tail >= a.capacity {
		return 0
	}
	return a.capacity - tail
}

// Push reserves size bytes and returns a pointer to the start of the region.
func (a *Arena) Push(size uint64) unsafe.Pointer {
	off := a.push(size)
	return unsafe.Add(a.base, off) //nolint:gosec // unsafe is required for arena implementation
}

// PushBytes reserves size bytes and returns them as a slice.
func (a *Arena) PushBytes(size int) []byte {
	if size < 0 {
		a.diag.Fatal("arena: negative size", "arena", a.name, "size", size)
	}
	n := uint64(size)
	off := a.push(n)
	return a.buf[off : off+n : off+n]
}

// PushAligned reserves size bytes starting on an align boundary. It returns
// the region and the number of bytes consumed, padding included, which is
// the amount the matching Pop must release.
func (a *Arena) PushAligned(size, align uint64) (unsafe.Pointer, uint64) {
	if align == 0 || align&(align-1) != 0 {
		a.diag.Fatal("arena: alignment must be a power of two", "arena", a.name, "align", align)
	}
	baseAddr := uint64(uintptr(a.base))
	for {
		tail := a.tail.Load()
		start := mem.AlignUp(baseAddr+tail, align) - baseAddr
		next := start + size
		if next > a.capacity {
			a.exhausted(size, tail)
		}
		if a.tail.CompareAndSwap(tail, next) {
			a.record(next)
			return unsafe.Add(a.base, start), next - tail //nolint:gosec // unsafe is required for arena implementation
		}
	}
}

func (a *Arena) push(size uint64) uint64 {
	next := a.tail.Add(size)
	off := next - size
	if next > a.capacity || next < size {
		a.exhausted(size, off)
	}
	a.record(next)
	return off
}

func (a *Arena) record(next uint64) {
	a.pushes.Add(1)
	for {
		hw := a.highWater.Load()
		if next <= hw || a.highWater.CompareAndSwap(hw, next) {
			return
		}
	}
}

func (a *Arena) exhausted(size, tail uint64) {
	a.diag.Fatal("arena: out of memory",
		"arena", a.name,
		"size", size,
		"tail", tail,
		"capacity", a.capacity,
	)
}

// Pop releases the last size bytes pushed.
// Popping more than is currently pushed is fatal.
func (a *Arena) Pop(size uint64) {
	for {
		tail := a.tail.Load()
		if size > tail {
			a.diag.Fatal("arena: pop exceeds pushed size", "arena", a.name, "size", size, "tail", tail)
		}
		if a.tail.CompareAndSwap(tail, tail-size) {
			return
		}
	}
}

// Clear resets the arena to empty.
// It must not run concurrently with Push or Pop.
func (a *Arena) Clear() {
	a.tail.Store(0)
}

// Advise forwards an access pattern hint for the whole region.
func (a *Arena) Advise(pattern mmap.AccessPattern) error {
	return a.mapping.Advise(pattern)
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		Capacity:  a.capacity,
		Tail:      a.tail.Load(),
		HighWater: a.highWater.Load(),
		Pushes:    a.pushes.Load(),
		HugePages: a.mapping.HugePages(),
	}
}

// Close returns the region to the OS. Every pointer into the arena becomes invalid.
func (a *Arena) Close() error {
	if a.mapping == nil {
		return nil
	}
	err := a.mapping.Close()
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(a.capacity))
		a.acquirer = nil
	}
	a.mapping = nil
	a.buf = nil
	a.base = nil
	a.tail.Store(0)
	return err
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{name: %s, capacity: %.2f MB, tail: %d, high_water: %d, huge_pages: %v}",
		a.name,
		float64(s.Capacity)/(1024*1024),
		s.Tail,
		s.HighWater,
		s.HugePages,
	)
}
