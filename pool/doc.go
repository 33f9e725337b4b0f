// Package pool provides fixed-capacity slot allocators with O(1) allocate
// and free.
//
// A Pool owns CAPACITY slots of T. GetVacant hands out a zeroed slot and
// stamps its id; Free validates the id against the occupancy bitmap, runs
// the optional Destroy hook and pushes the slot onto an explicit free-index
// stack. Freed storage is never read to find the next free slot.
//
// Every slot carries a generation counter bumped on free. A Ref pairs a
// slot id with the generation it was issued at, so stale references
// resolve to nil instead of aliasing a newer occupant.
//
// Pools is an auto-growing sequence of Pool sharing one 32-bit id space:
// handle = (poolIndex << 16) | slotIndex.
//
// Neither type is safe for concurrent mutation. Guard them with a
// concurrency.Spinlock or another mutex held for one operation at a time.
package pool
