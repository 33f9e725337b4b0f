// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// AllocAligned returns byte slices whose first element sits on a requested
// power-of-two boundary. The allocator adapter uses 32-byte blocks; SIMD
// kernels and cache-line sensitive structures use CacheLineSize.
//
// # Block Operations
//
// Copy is the byte-level block primitive the allocator adapter uses when
// moving raw storage.
package mem
