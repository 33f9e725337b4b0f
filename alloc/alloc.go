package alloc

import (
	"sort"
	"sync"
	"unsafe"

	"github.com/hupe1980/substrate/diag"
	"github.com/hupe1980/substrate/internal/mem"
)

// Unnamed is the tag recorded for allocations without a name.
const Unnamed = "unnamed"

// MemoryAcquirer is the memory budget charged by the allocator and by arenas.
type MemoryAcquirer interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}

// Info describes one live allocation.
type Info struct {
	Addr uintptr
	Name string
	Size int
}

// NameStats aggregates allocations sharing a name tag.
type NameStats struct {
	LiveBytes   int64
	LiveBlocks  int64
	TotalAllocs uint64
}

// Stats is a snapshot of allocator usage.
type Stats struct {
	LiveBytes   int64
	LiveBlocks  int64
	TotalAllocs uint64
	TotalFrees  uint64
	ByName      map[string]NameStats
}

type block struct {
	name string
	size int
	// ref keeps the backing array reachable until Deallocate.
	ref any
}

// Allocator is safe for concurrent use.
type Allocator struct {
	mu     sync.Mutex
	blocks map[uintptr]block
	names  map[string]*NameStats
	allocs uint64
	frees  uint64
	live   int64

	budget MemoryAcquirer
	diag   diag.Reporter
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithMemoryAcquirer charges every allocation against acquirer.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Allocator) {
		a.budget = acquirer
	}
}

// New creates an Allocator reporting contract violations to r.
func New(r diag.Reporter, opts ...Option) *Allocator {
	a := &Allocator{
		blocks: make(map[uintptr]block),
		names:  make(map[string]*NameStats),
		diag:   diag.Or(r),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reporter returns the diagnostics sink of the allocator.
func (a *Allocator) Reporter() diag.Reporter {
	return a.diag
}

// Allocate returns a zeroed, 32-byte aligned block of size bytes.
// A non-positive size returns nil.
func (a *Allocator) Allocate(size int, name string) []byte {
	if size <= 0 {
		return nil
	}
	buf := mem.AllocAligned(size, mem.BlockAlignment)
	a.track(unsafe.Pointer(&buf[0]), size, name, buf) //nolint:gosec // address is only used as a table key
	return buf
}

// Reallocate resizes buf to size bytes, preserving the common prefix.
// A nil buf behaves like Allocate; a non-positive size like Deallocate.
func (a *Allocator) Reallocate(buf []byte, size int) []byte {
	if len(buf) == 0 && cap(buf) == 0 {
		return a.Allocate(size, Unnamed)
	}
	info, ok := a.Lookup(unsafe.Pointer(unsafe.SliceData(buf))) //nolint:gosec // address is only used as a table key
	if !ok {
		a.diag.Fatal("alloc: reallocate of unknown block", "addr", uintptr(unsafe.Pointer(unsafe.SliceData(buf)))) //nolint:gosec
	}
	if size <= 0 {
		a.Deallocate(buf)
		return nil
	}
	out := a.Allocate(size, info.Name)
	mem.Copy(out, buf[:info.Size])
	a.Deallocate(buf)
	return out
}

// Deallocate releases a block returned by Allocate or Reallocate.
// Releasing an unknown or already released block is fatal.
func (a *Allocator) Deallocate(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	a.untrack(unsafe.Pointer(unsafe.SliceData(buf))) //nolint:gosec // address is only used as a table key
}

// Lookup returns the table entry for the block starting at p.
func (a *Allocator) Lookup(p unsafe.Pointer) (Info, bool) {
	addr := uintptr(p)
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.blocks[addr]
	if !ok {
		return Info{}, false
	}
	return Info{Addr: addr, Name: b.name, Size: b.size}, true
}

// Each visits every live allocation in address order until fn returns false.
func (a *Allocator) Each(fn func(Info) bool) {
	a.mu.Lock()
	infos := make([]Info, 0, len(a.blocks))
	for addr, b := range a.blocks {
		infos = append(infos, Info{Addr: addr, Name: b.name, Size: b.size})
	}
	a.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Addr < infos[j].Addr })
	for _, info := range infos {
		if !fn(info) {
			return
		}
	}
}

// Stats returns a snapshot of allocator usage.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Stats{
		LiveBytes:   a.live,
		LiveBlocks:  int64(len(a.blocks)),
		TotalAllocs: a.allocs,
		TotalFrees:  a.frees,
		ByName:      make(map[string]NameStats, len(a.names)),
	}
	for name, ns := range a.names {
		s.ByName[name] = *ns
	}
	return s
}

func (a *Allocator) track(p unsafe.Pointer, size int, name string, ref any) {
	if name == "" {
		name = Unnamed
	}
	if a.budget != nil && !a.budget.TryAcquireMemory(int64(size)) {
		a.diag.Fatal("alloc: memory limit exceeded", "name", name, "size", size)
	}

	addr := uintptr(p)
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, dup := a.blocks[addr]; dup {
		a.diag.Fatal("alloc: block registered twice", "addr", addr, "name", name)
	}
	a.blocks[addr] = block{name: name, size: size, ref: ref}
	a.allocs++
	a.live += int64(size)

	ns := a.names[name]
	if ns == nil {
		ns = &NameStats{}
		a.names[name] = ns
	}
	ns.LiveBytes += int64(size)
	ns.LiveBlocks++
	ns.TotalAllocs++
}

func (a *Allocator) untrack(p unsafe.Pointer) {
	addr := uintptr(p)
	a.mu.Lock()
	b, ok := a.blocks[addr]
	if !ok {
		a.mu.Unlock()
		a.diag.Fatal("alloc: invalid free", "addr", addr)
		return
	}
	delete(a.blocks, addr)
	a.frees++
	a.live -= int64(b.size)
	if ns := a.names[b.name]; ns != nil {
		ns.LiveBytes -= int64(b.size)
		ns.LiveBlocks--
	}
	a.mu.Unlock()

	if a.budget != nil {
		a.budget.ReleaseMemory(int64(b.size))
	}
}
