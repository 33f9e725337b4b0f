// Package resource implements a process-wide memory budget.
//
// The Controller is shared by the allocator adapter and every arena so that
// all manually managed memory is charged against one limit:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	// Non-blocking acquire (fail-fast)
//	if !rc.TryAcquireMemory(1 << 20) {
//	    // limit reached - caller decides
//	}
//	defer rc.ReleaseMemory(1 << 20)
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional limiting without nil checks everywhere.
package resource
