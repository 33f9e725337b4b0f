package pool

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/substrate/diag"
	"github.com/hupe1980/substrate/internal/conv"
)

// MaxPools is the number of sub-pools addressable by a 16-bit pool index.
const MaxPools = 1 << 16

// Pools is an auto-growing collection of Pool sharing one id space.
type Pools[T any, PT interface {
	*T
	Slotted
}] struct {
	pools    []*Pool[T, PT]
	vacant   *roaring.Bitmap // indices of pools with at least one free slot
	capacity int
	diag     diag.Reporter
}

// NewPools creates an empty collection whose sub-pools hold capacity slots each.
func NewPools[T any, PT interface {
	*T
	Slotted
}](capacity int, r diag.Reporter) *Pools[T, PT] {
	r = diag.Or(r)
	if capacity <= 0 || capacity > MaxCapacity {
		r.Fatal("pool: invalid capacity", "capacity", capacity, "max", MaxCapacity)
	}
	return &Pools[T, PT]{
		vacant:   roaring.New(),
		capacity: capacity,
		diag:     r,
	}
}

// GetVacant returns a zeroed object from the first sub-pool with room,
// appending a new sub-pool when all are full.
func (ps *Pools[T, PT]) GetVacant() PT {
	if ps.vacant.IsEmpty() {
		ps.grow()
	}

	idx := ps.vacant.Minimum()
	p := ps.pools[idx]
	obj := p.GetVacant()
	if p.Full() {
		ps.vacant.Remove(idx)
	}
	return obj
}

// GetVacantRef is GetVacant plus a generation-checked reference to the result.
func (ps *Pools[T, PT]) GetVacantRef() (PT, Ref) {
	obj := ps.GetVacant()
	return obj, ps.ref(obj.SlotID())
}

func (ps *Pools[T, PT]) grow() {
	idx, err := conv.IntToUint16(len(ps.pools))
	if err != nil {
		ps.diag.Fatal("pool: too many pools", "pools", len(ps.pools), "capacity", ps.capacity, "error", err)
	}
	ps.pools = append(ps.pools, New[T, PT](ps.capacity, idx, ps.diag))
	ps.vacant.Add(uint32(idx))
}

// Get returns the live object with the given id, or nil.
func (ps *Pools[T, PT]) Get(id uint32) PT {
	p := ps.route(id)
	if p == nil {
		return nil
	}
	return p.Get(id)
}

// Resolve returns the object a Ref points at, or nil if it was freed since.
func (ps *Pools[T, PT]) Resolve(ref Ref) PT {
	p := ps.route(ref.ID)
	if p == nil {
		return nil
	}
	return p.Resolve(ref)
}

// Free destroys the object with the given id. Invalid or double frees are fatal.
func (ps *Pools[T, PT]) Free(id uint32) {
	p := ps.route(id)
	if p == nil {
		ps.diag.Fatal("pool: invalid free", "pool_index", id>>IndexShift, "slot_id", id, "pools", len(ps.pools))
	}
	p.Free(id)
	ps.vacant.Add(uint32(p.Index()))
}

// FreeObject frees obj by its stamped slot id.
func (ps *Pools[T, PT]) FreeObject(obj PT) {
	if obj == nil {
		ps.diag.Fatal("pool: free of nil object")
	}
	ps.Free(obj.SlotID())
}

// Iterate visits live objects pool by pool, in storage order, until fn returns false.
func (ps *Pools[T, PT]) Iterate(fn func(obj PT) bool) {
	stopped := false
	for _, p := range ps.pools {
		p.Iterate(func(obj PT) bool {
			if !fn(obj) {
				stopped = true
				return false
			}
			return true
		})
		if stopped {
			return
		}
	}
}

// Len returns the number of live objects across all sub-pools.
func (ps *Pools[T, PT]) Len() int {
	n := 0
	for _, p := range ps.pools {
		n += p.Len()
	}
	return n
}

// NumPools returns the number of sub-pools.
func (ps *Pools[T, PT]) NumPools() int { return len(ps.pools) }

// Destroy destroys every sub-pool. Sub-pools are kept for reuse.
func (ps *Pools[T, PT]) Destroy() {
	for i, p := range ps.pools {
		p.Destroy()
		ps.vacant.Add(uint32(i)) //nolint:gosec // i < MaxPools
	}
}

func (ps *Pools[T, PT]) ref(id uint32) Ref {
	p := ps.route(id)
	return Ref{ID: id, Gen: p.gens[id&SlotMask]}
}

func (ps *Pools[T, PT]) route(id uint32) *Pool[T, PT] {
	idx := int(id >> IndexShift)
	if idx >= len(ps.pools) {
		return nil
	}
	return ps.pools[idx]
}
