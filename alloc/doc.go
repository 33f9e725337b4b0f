// Package alloc is the allocator adapter every growable container allocates through.
//
// It passes allocation through to the Go runtime and records each live block
// in a side-table keyed by the block's base address. The table carries the
// diagnostic name tag and size, and it keeps the block reachable until it is
// deallocated, so the lifetime is manual even though the memory is GC-owned.
//
// Raw blocks from Allocate start on a 32-byte boundary. Typed slices from
// MakeSlice carry their element type's natural alignment.
//
// Freeing an address that is not in the table is a contract violation and
// is reported through diag.Reporter.Fatal. When a memory budget is attached,
// exceeding it is fatal as well.
package alloc
