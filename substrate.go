package substrate

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/substrate/alloc"
	"github.com/hupe1980/substrate/arena"
	"github.com/hupe1980/substrate/container"
	"github.com/hupe1980/substrate/diag"
	"github.com/hupe1980/substrate/hashmap"
	"github.com/hupe1980/substrate/internal/resource"
	"github.com/hupe1980/substrate/pool"
)

// Runtime owns the diagnostics sink, the allocator, the memory budget and
// the named arenas of a process.
type Runtime struct {
	logger    *diag.Logger
	reporter  diag.Reporter
	resources *resource.Controller
	allocator *alloc.Allocator

	largePages bool

	mu     sync.RWMutex
	arenas map[string]*arena.Arena
	closed bool
}

// New creates a Runtime and reserves every arena registered with WithArena.
func New(opts ...Option) (*Runtime, error) {
	o := options{stackTraces: true}
	for _, opt := range opts {
		opt(&o)
	}

	if o.memoryLimit < 0 {
		return nil, ErrInvalidMemoryLimit
	}

	logger := o.logger
	if logger == nil {
		logger = diag.New(nil, diag.WithStackTraces(o.stackTraces))
	}
	reporter := o.reporter
	if reporter == nil {
		reporter = logger
	}

	rc := resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	rt := &Runtime{
		logger:     logger,
		reporter:   reporter,
		resources:  rc,
		allocator:  alloc.New(reporter, alloc.WithMemoryAcquirer(rc)),
		largePages: o.largePages,
		arenas:     make(map[string]*arena.Arena, len(o.arenas)),
	}

	for _, ao := range o.arenas {
		if _, err := rt.NewArena(ao.name, ao.capacity); err != nil {
			return nil, errors.Join(err, rt.Close())
		}
	}

	logger.Debug("runtime created",
		"arenas", len(rt.arenas),
		"memory_limit", o.memoryLimit,
		"large_pages", o.largePages,
	)
	return rt, nil
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *diag.Logger { return rt.logger }

// Reporter returns the diagnostics sink handed to components.
func (rt *Runtime) Reporter() diag.Reporter { return rt.reporter }

// Allocator returns the allocator adapter.
func (rt *Runtime) Allocator() *alloc.Allocator { return rt.allocator }

// NewArena reserves a named arena charged against the memory limit.
// The OS refusing the reservation, or the budget not covering it, is fatal.
func (rt *Runtime) NewArena(name string, capacity int) (*arena.Arena, error) {
	if name == "" || capacity <= 0 {
		return nil, fmt.Errorf("%w: name %q, capacity %d", ErrInvalidArena, name, capacity)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return nil, ErrClosed
	}
	if _, ok := rt.arenas[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrArenaExists, name)
	}

	a := arena.New(arena.Config{
		Name:       name,
		Capacity:   capacity,
		LargePages: rt.largePages,
		Acquirer:   rt.resources,
	}, rt.reporter)
	rt.arenas[name] = a
	return a, nil
}

// Arena returns the arena registered under name.
func (rt *Runtime) Arena(name string) (*arena.Arena, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	a, ok := rt.arenas[name]
	return a, ok
}

// Arenas returns the registered arena names in sorted order.
func (rt *Runtime) Arenas() []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	names := make([]string, 0, len(rt.arenas))
	for name := range rt.arenas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MemoryStats reports the budget shared by the allocator and the arenas.
type MemoryStats struct {
	Used      int64
	Peak      int64
	Limit     int64
	Allocator alloc.Stats
	Arenas    map[string]arena.Stats
}

// MemoryStats returns a snapshot of memory usage.
func (rt *Runtime) MemoryStats() MemoryStats {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	s := MemoryStats{
		Used:      rt.resources.MemoryUsage(),
		Peak:      rt.resources.MemoryPeak(),
		Limit:     rt.resources.MemoryLimit(),
		Allocator: rt.allocator.Stats(),
		Arenas:    make(map[string]arena.Stats, len(rt.arenas)),
	}
	for name, a := range rt.arenas {
		s.Arenas[name] = a.Stats()
	}
	return s
}

// Close releases every arena. Allocator blocks still live are logged.
// Close is idempotent.
func (rt *Runtime) Close() error {
	if rt == nil {
		return nil
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return nil
	}
	rt.closed = true

	var errs []error
	for name, a := range rt.arenas {
		if err := a.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close arena %q: %w", name, err))
		}
	}
	clear(rt.arenas)

	if s := rt.allocator.Stats(); s.LiveBlocks > 0 {
		rt.logger.Warn("runtime closed with live allocations",
			"live_blocks", s.LiveBlocks,
			"live_bytes", s.LiveBytes,
		)
	}
	return errors.Join(errs...)
}

// NewMap creates a hash map allocating through the runtime's allocator.
func NewMap[K hashmap.Key, V any](rt *Runtime, optFns ...func(o *hashmap.Options)) *hashmap.Map[K, V] {
	return hashmap.New[K, V](rt.allocator, optFns...)
}

// NewVector creates a vector allocating through the runtime's allocator.
func NewVector[T any](rt *Runtime, name string, capacity int) *container.Vector[T] {
	return container.NewVector[T](rt.allocator, name, capacity)
}

// NewPool creates a fixed-capacity pool reporting to the runtime.
func NewPool[T any, PT interface {
	*T
	pool.Slotted
}](rt *Runtime, capacity int) *pool.Pool[T, PT] {
	return pool.New[T, PT](capacity, 0, rt.reporter)
}

// NewPools creates an auto-growing pool collection reporting to the runtime.
func NewPools[T any, PT interface {
	*T
	pool.Slotted
}](rt *Runtime, capacity int) *pool.Pools[T, PT] {
	return pool.NewPools[T, PT](capacity, rt.reporter)
}
