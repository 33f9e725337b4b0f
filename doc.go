// Package substrate provides manually managed memory, container and
// concurrency primitives for latency-sensitive Go code.
//
// The building blocks live in subpackages:
//
//   - alloc: allocator adapter with a diagnostic side-table of named blocks
//   - arena: bump allocator over one OS reservation, large pages first
//   - pool: fixed-capacity slot allocators (Pool) and an auto-growing Pools
//   - container: Vector and fixed-capacity Array on top of alloc
//   - hashmap: SIMD-probed open-addressing map with Robin-Hood displacement
//   - concurrency: SPSC/MPSC rings, a FIFO-fair Spinlock and Atomic[T]
//   - diag: structured diagnostics; fatal reports never return
//
// # Quick Start
//
// A Runtime is created once at startup and handed to the components that
// need it. There are no package-level singletons:
//
//	rt, err := substrate.New(
//	    substrate.WithMemoryLimit(1<<30),
//	    substrate.WithArena("frame", 64<<20),
//	    substrate.WithLargePages(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	frame, _ := rt.Arena("frame")
//	scratch := arena.NewScratch[float32](frame, 1024)
//	defer scratch.Release()
//
//	m := substrate.NewMap[string, int](rt)
//	m.Insert("answer", 42)
//
// # Failure Model
//
// Contract violations and exhaustion (pool full on a fatal path, arena out of
// memory, invalid or double free, out-of-bounds access) are reported via
// diag.Reporter.Fatal, which logs and terminates the process. Expected misses
// (map lookup, queue full or empty, TryAcquire failing) are plain bool
// results. Only configuration mistakes surface as errors.
//
// # Thread Safety
//
// Arena Push and Pop, the queues and the Spinlock are safe for concurrent
// use. Pool, Pools, Vector, Array and Map are not; guard them with a
// Spinlock or mutex held for a single operation.
package substrate
