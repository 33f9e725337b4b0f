// Package container implements contiguous containers backed by the
// allocator adapter.
//
// Vector is a growable array; Array has a fixed capacity chosen at
// construction. Both report out-of-bounds access through the allocator's
// diagnostics sink, which never returns.
package container
