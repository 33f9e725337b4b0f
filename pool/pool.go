package pool

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/substrate/diag"
)

const (
	// MaxCapacity is the largest slot count a single pool may hold.
	MaxCapacity = 1 << 16

	// IndexShift positions the pool index inside a slot id.
	IndexShift = 16

	// SlotMask extracts the slot index from a slot id.
	SlotMask = MaxCapacity - 1
)

// Slotted is implemented by every type stored in a Pool.
// The pool stamps the slot id on GetVacant; the type only has to keep it.
type Slotted interface {
	SlotID() uint32
	SetSlotID(id uint32)
}

// Destroyer is an optional hook run when a slot is freed or the pool is destroyed.
type Destroyer interface {
	Destroy()
}

// Slot is an embeddable Slotted implementation.
type Slot struct {
	id uint32
}

// SlotID returns the stamped id.
func (s *Slot) SlotID() uint32 { return s.id }

// SetSlotID stamps the id.
func (s *Slot) SetSlotID(id uint32) { s.id = id }

// Ref is a generation-checked reference to a pool slot.
type Ref struct {
	ID  uint32
	Gen uint32
}

// Pool is a fixed-capacity allocator of T.
// PT is *T and must implement Slotted.
type Pool[T any, PT interface {
	*T
	Slotted
}] struct {
	storage  []T
	gens     []uint32
	free     []uint32 // stack of vacant slot indices, top at the end
	occupied *bitset.BitSet
	index    uint16
	diag     diag.Reporter
}

// New creates a pool with the given capacity and pool index.
// A capacity outside [1, MaxCapacity] is fatal.
func New[T any, PT interface {
	*T
	Slotted
}](capacity int, index uint16, r diag.Reporter) *Pool[T, PT] {
	r = diag.Or(r)
	if capacity <= 0 || capacity > MaxCapacity {
		r.Fatal("pool: invalid capacity", "capacity", capacity, "max", MaxCapacity)
	}

	free := make([]uint32, capacity)
	for i := range free {
		// Pushed in reverse so slot 0 is handed out first.
		free[i] = uint32(capacity - 1 - i) //nolint:gosec // capacity <= MaxCapacity
	}

	return &Pool[T, PT]{
		storage:  make([]T, capacity),
		gens:     make([]uint32, capacity),
		free:     free,
		occupied: bitset.New(uint(capacity)),
		index:    index,
		diag:     r,
	}
}

// Index returns the pool's index within the shared id space.
func (p *Pool[T, PT]) Index() uint16 { return p.index }

// Len returns the number of live objects.
func (p *Pool[T, PT]) Len() int { return len(p.storage) - len(p.free) }

// Cap returns the slot capacity.
func (p *Pool[T, PT]) Cap() int { return len(p.storage) }

// Full reports whether every slot is occupied.
func (p *Pool[T, PT]) Full() bool { return len(p.free) == 0 }

// GetVacant returns a zeroed object with its slot id stamped.
// It returns nil and warns if the pool is full.
func (p *Pool[T, PT]) GetVacant() PT {
	n := len(p.free)
	if n == 0 {
		p.diag.Warn("pool: capacity exhausted", "pool_index", p.index, "capacity", len(p.storage))
		return nil
	}

	slot := p.free[n-1]
	p.free = p.free[:n-1]
	p.occupied.Set(uint(slot))

	obj := PT(&p.storage[slot])
	var zero T
	*obj = zero
	obj.SetSlotID(p.id(slot))
	return obj
}

// GetVacantRef is GetVacant plus a generation-checked reference to the result.
func (p *Pool[T, PT]) GetVacantRef() (PT, Ref) {
	obj := p.GetVacant()
	if obj == nil {
		return nil, Ref{}
	}
	id := obj.SlotID()
	return obj, Ref{ID: id, Gen: p.gens[id&SlotMask]}
}

// Get returns the live object with the given id, or nil.
func (p *Pool[T, PT]) Get(id uint32) PT {
	slot, ok := p.slot(id)
	if !ok || !p.occupied.Test(uint(slot)) {
		return nil
	}
	return PT(&p.storage[slot])
}

// Resolve returns the object a Ref points at, or nil if it was freed since.
func (p *Pool[T, PT]) Resolve(ref Ref) PT {
	obj := p.Get(ref.ID)
	if obj == nil || p.gens[ref.ID&SlotMask] != ref.Gen {
		return nil
	}
	return obj
}

// Free destroys the object with the given id and recycles its slot.
// Freeing an id that is out of range or not live is fatal.
func (p *Pool[T, PT]) Free(id uint32) {
	slot, ok := p.slot(id)
	if !ok {
		p.diag.Fatal("pool: invalid free", "pool_index", p.index, "slot_id", id)
	}
	if !p.occupied.Test(uint(slot)) {
		p.diag.Fatal("pool: double free", "pool_index", p.index, "slot_id", id)
	}

	p.destroy(slot)
	p.occupied.Clear(uint(slot))
	p.gens[slot]++
	p.free = append(p.free, slot)
}

// FreeObject frees obj by its stamped slot id.
func (p *Pool[T, PT]) FreeObject(obj PT) {
	if obj == nil {
		p.diag.Fatal("pool: free of nil object", "pool_index", p.index)
	}
	p.Free(obj.SlotID())
}

// Iterate visits live objects in storage order until fn returns false.
// fn may free the object it is visiting or any already visited one.
func (p *Pool[T, PT]) Iterate(fn func(obj PT) bool) {
	for i, ok := p.occupied.NextSet(0); ok; i, ok = p.occupied.NextSet(i + 1) {
		if !fn(PT(&p.storage[i])) {
			return
		}
	}
}

// Destroy runs the Destroy hook on every live object and empties the pool.
func (p *Pool[T, PT]) Destroy() {
	for i, ok := p.occupied.NextSet(0); ok; i, ok = p.occupied.NextSet(i + 1) {
		p.destroy(uint32(i)) //nolint:gosec // i < MaxCapacity
		p.gens[i]++
	}
	p.occupied.ClearAll()

	capacity := len(p.storage)
	p.free = p.free[:0]
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, uint32(i)) //nolint:gosec // capacity <= MaxCapacity
	}
}

func (p *Pool[T, PT]) destroy(slot uint32) {
	obj := PT(&p.storage[slot])
	if d, ok := any(obj).(Destroyer); ok {
		d.Destroy()
	}
	var zero T
	*obj = zero
}

func (p *Pool[T, PT]) id(slot uint32) uint32 {
	return uint32(p.index)<<IndexShift | slot
}

func (p *Pool[T, PT]) slot(id uint32) (uint32, bool) {
	if uint16(id>>IndexShift) != p.index {
		return 0, false
	}
	slot := id & SlotMask
	return slot, int(slot) < len(p.storage)
}
