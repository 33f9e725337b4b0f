// Package conv provides checked integer conversions.
//
// Sizes and counts flow in as int from callers and are stored as fixed-width
// fields (uint16 pool indices, uint32 slot ids, uint64 arena offsets). These
// helpers reject values that would wrap, returning an error wrapping
// ErrOverflow.
//
// For conversions that are provably safe by construction (loop indices,
// masked values), use direct casts instead.
package conv
