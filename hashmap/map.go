package hashmap

import (
	"hash/maphash"
	"math/bits"

	"github.com/hupe1980/substrate/alloc"
	"github.com/hupe1980/substrate/container"
	"github.com/hupe1980/substrate/diag"
	"github.com/hupe1980/substrate/internal/conv"
	"github.com/hupe1980/substrate/internal/simd"
)

const (
	// MinCapacity is the smallest control table size.
	MinCapacity = 8

	// MaxRehashes is the number of extra hash seeds tried after the first.
	MaxRehashes = 2

	// DefaultMaxLoadFactor triggers growth before an insert would exceed it.
	DefaultMaxLoadFactor = 0.5

	window     = simd.Lanes
	distShift  = 29
	digestMask = 1<<distShift - 1
	maxDist    = 1<<(32-distShift) - 1
	emptyCtrl  = 0
	noEntry    = ^uint32(0)

	// maxEvictions bounds one displacement chain before the table grows.
	maxEvictions = 64
)

// Options configures a Map.
type Options struct {
	// InitialCapacity is rounded up to a power of two, at least MinCapacity.
	InitialCapacity int
	// MaxLoadFactor in (0, 1]. Out of range values select the default.
	MaxLoadFactor float64
	// Name tags the map's allocations.
	Name string
}

// Map is an open-addressing hash map from K to V.
type Map[K Key, V any] struct {
	ctrl      []uint32 // len == capacity
	slotValue []uint32 // control slot -> dense index
	keys      *container.Vector[K]
	values    *container.Vector[V]
	kvSlot    *container.Vector[uint32] // dense index -> control slot

	capacity  int
	mask      uint64
	maxProbe  int
	maxLoad   float64
	seeds     [MaxRehashes + 1]maphash.Seed
	hasher    hasher[K]
	name      string
	allocator *alloc.Allocator
	diag      diag.Reporter
}

// New creates an empty map whose storage is allocated through a.
func New[K Key, V any](a *alloc.Allocator, optFns ...func(o *Options)) *Map[K, V] {
	opts := Options{
		InitialCapacity: MinCapacity,
		MaxLoadFactor:   DefaultMaxLoadFactor,
		Name:            "hashmap",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxLoadFactor <= 0 || opts.MaxLoadFactor > 1 {
		opts.MaxLoadFactor = DefaultMaxLoadFactor
	}

	m := &Map[K, V]{
		keys:      container.NewVector[K](a, opts.Name+".keys", 0),
		values:    container.NewVector[V](a, opts.Name+".values", 0),
		kvSlot:    container.NewVector[uint32](a, opts.Name+".kv_slot", 0),
		maxLoad:   opts.MaxLoadFactor,
		hasher:    newHasher[K](),
		name:      opts.Name,
		allocator: a,
		diag:      a.Reporter(),
	}
	for i := range m.seeds {
		m.seeds[i] = maphash.MakeSeed()
	}
	m.setCapacity(roundCapacity(opts.InitialCapacity))
	return m
}

func roundCapacity(n int) int {
	if n <= MinCapacity {
		return MinCapacity
	}
	return 1 << bits.Len(uint(n-1))
}

// probeLength returns the number of windows probed per hash for capacity c.
func probeLength(c int) int {
	return min(1+bits.TrailingZeros(uint(c))/4, maxDist+1)
}

func (m *Map[K, V]) setCapacity(c int) {
	m.ctrl = alloc.MakeSlice[uint32](m.allocator, c, m.name+".ctrl")
	m.slotValue = alloc.MakeSlice[uint32](m.allocator, c, m.name+".slot_value")
	m.capacity = c
	m.mask = uint64(c - 1) //nolint:gosec // c is a positive power of two
	m.maxProbe = probeLength(c)
}

func (m *Map[K, V]) freeTable() {
	alloc.FreeSlice(m.allocator, m.ctrl)
	alloc.FreeSlice(m.allocator, m.slotValue)
	m.ctrl, m.slotValue = nil, nil
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.keys.Len() }

// Capacity returns the number of control slots.
func (m *Map[K, V]) Capacity() int { return m.capacity }

// MaxProbeLength returns the number of eight-slot windows examined per hash.
func (m *Map[K, V]) MaxProbeLength() int { return m.maxProbe }

// LoadFactor returns Len / Capacity, always in [0, 1].
func (m *Map[K, V]) LoadFactor() float64 {
	if m.capacity == 0 {
		return 0
	}
	return float64(m.Len()) / float64(m.capacity)
}

// Find returns the value stored for k.
func (m *Map[K, V]) Find(k K) (V, bool) {
	if _, idx, ok := m.lookup(k); ok {
		return m.values.At(int(idx)), true
	}
	var zero V
	return zero, false
}

// Get returns a pointer to the value stored for k, or nil. The pointer is
// valid until the next Insert or Remove.
func (m *Map[K, V]) Get(k K) *V {
	if _, idx, ok := m.lookup(k); ok {
		return m.values.Ref(int(idx))
	}
	return nil
}

// Contains reports whether k is present.
func (m *Map[K, V]) Contains(k K) bool {
	_, _, ok := m.lookup(k)
	return ok
}

// Insert stores v for k, replacing any existing value.
func (m *Map[K, V]) Insert(k K, v V) {
	if _, idx, ok := m.lookup(k); ok {
		m.values.Set(int(idx), v)
		return
	}

	if float64(m.Len()+1) > float64(m.capacity)*m.maxLoad {
		m.rebuild(m.capacity * 2)
	}

	idx := m.denseLen()
	m.keys.Push(k)
	m.values.Push(v)
	m.kvSlot.Push(noEntry)

	if !m.place(idx) {
		m.rebuild(m.capacity * 2)
	}
}

// Remove deletes k and reports whether it was present.
func (m *Map[K, V]) Remove(k K) bool {
	slot, idx, ok := m.lookup(k)
	if !ok {
		return false
	}

	m.ctrl[slot] = emptyCtrl
	m.slotValue[slot] = noEntry

	m.keys.SwapRemove(int(idx))
	m.values.SwapRemove(int(idx))
	if moved := m.kvSlot.SwapRemove(int(idx)); moved >= 0 {
		m.slotValue[m.kvSlot.At(int(idx))] = idx
	}
	return true
}

// Reserve grows the table so n entries fit without exceeding the load factor.
func (m *Map[K, V]) Reserve(n int) {
	c := max(m.capacity, MinCapacity)
	for float64(n) > float64(c)*m.maxLoad {
		c *= 2
	}
	if c != m.capacity {
		m.rebuild(c)
	}
	m.keys.Reserve(n)
	m.values.Reserve(n)
	m.kvSlot.Reserve(n)
}

// Each calls fn for every entry in dense order until fn returns false.
// fn must not insert or remove.
func (m *Map[K, V]) Each(fn func(k K, v V) bool) {
	keys, values := m.keys.Slice(), m.values.Slice()
	for i := range keys {
		if !fn(keys[i], values[i]) {
			return
		}
	}
}

// Clear removes every entry and keeps the capacity.
func (m *Map[K, V]) Clear() {
	clear(m.ctrl)
	m.keys.Clear()
	m.values.Clear()
	m.kvSlot.Clear()
}

// Free returns all storage to the allocator. The map is empty afterwards;
// a later Insert allocates a fresh table of MinCapacity.
func (m *Map[K, V]) Free() {
	m.freeTable()
	m.keys.Free()
	m.values.Free()
	m.kvSlot.Free()
	m.capacity = 0
}

// lookup returns the control slot and dense index of k.
func (m *Map[K, V]) lookup(k K) (uint32, uint32, bool) {
	if m.keys.Len() == 0 {
		return 0, 0, false
	}
	keys := m.keys.Slice()
	for attempt := range m.seeds {
		h := m.hasher.hash(m.seeds[attempt], k)
		digest := digestOf(h)
		for p := range m.maxProbe {
			start := m.windowStart(h, p)
			match := simd.MatchDigest(m.probeWindow(start), digest, digestMask)
			for match != 0 {
				lane := uint32(bits.TrailingZeros8(match))
				match &= match - 1
				slot := start + lane
				idx := m.slotValue[slot]
				if m.hasher.equal(keys[idx], k) {
					return slot, idx, true
				}
			}
		}
	}
	return 0, 0, false
}

// place puts dense entry idx into the control table, following eviction
// chains. It returns false when the table must grow.
func (m *Map[K, V]) place(idx uint32) bool {
	cur := idx
	for range maxEvictions {
		evicted, ok := m.placeOnce(cur)
		if !ok {
			return false
		}
		if evicted == noEntry {
			return true
		}
		cur = evicted
	}
	return false
}

// placeOnce claims a control slot for entry idx and returns the entry it
// evicted, or noEntry.
func (m *Map[K, V]) placeOnce(idx uint32) (uint32, bool) {
	k := m.keys.At(int(idx))
	for attempt := range m.seeds {
		h := m.hasher.hash(m.seeds[attempt], k)
		digest := digestOf(h)
		for p := range m.maxProbe {
			start := m.windowStart(h, p)
			lane, ok := pickLane(m.probeWindow(start), uint32(p)) //nolint:gosec // p <= maxDist
			if !ok {
				continue
			}

			slot := start + lane
			evicted := noEntry
			if m.ctrl[slot] != emptyCtrl {
				evicted = m.slotValue[slot]
				m.kvSlot.Set(int(evicted), noEntry)
			}
			m.ctrl[slot] = uint32(p)<<distShift | digest //nolint:gosec // p <= maxDist
			m.slotValue[slot] = idx
			m.kvSlot.Set(int(idx), slot)
			return evicted, true
		}
	}
	return noEntry, false
}

// pickLane selects the lane an entry probing at distance dist may take:
// an empty lane or one whose occupant sits at a smaller distance. Empty
// lanes count as distance zero, so the first one wins outright.
func pickLane(w *[window]uint32, dist uint32) (uint32, bool) {
	if empty := simd.MatchEqual(w, emptyCtrl); empty != 0 {
		return uint32(bits.TrailingZeros8(empty)), true //nolint:gosec // < window
	}
	best, bestDist := -1, uint32(maxDist+1)
	for i, c := range w {
		if d := c >> distShift; d < dist && d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint32(best), best >= 0 //nolint:gosec // checked by caller
}

// rebuild replaces the control table with one of capacity c (doubling
// further as needed) and re-places every dense entry.
func (m *Map[K, V]) rebuild(c int) {
	c = max(c, MinCapacity)
	n := m.denseLen()
	for {
		m.freeTable()
		m.setCapacity(c)
		ok := true
		for i := range n {
			m.kvSlot.Set(int(i), noEntry)
		}
		for i := range n {
			if !m.place(i) {
				ok = false
				break
			}
		}
		if ok {
			return
		}
		c *= 2
	}
}

// denseLen returns the entry count as a dense index type.
func (m *Map[K, V]) denseLen() uint32 {
	n, err := conv.IntToUint32(m.keys.Len())
	if err != nil {
		m.diag.Fatal("hashmap: too many entries", "name", m.name, "error", err)
	}
	return n
}

func (m *Map[K, V]) windowStart(h uint64, p int) uint32 {
	start := (h + uint64(p)*window) & m.mask //nolint:gosec // p is small
	if limit := uint64(m.capacity - window); start > limit {
		start = limit
	}
	return uint32(start)
}

func (m *Map[K, V]) probeWindow(start uint32) *[window]uint32 {
	return (*[window]uint32)(m.ctrl[start : start+window])
}

// digestOf takes the digest from the high bits so it is independent of the
// bucket index. Zero is reserved for empty slots.
func digestOf(h uint64) uint32 {
	d := uint32(h>>(64-distShift)) & digestMask
	if d == 0 {
		d = 1
	}
	return d
}
