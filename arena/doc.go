// Package arena provides a linear (bump) allocator over one OS reservation.
//
// An Arena reserves its whole capacity once, via an anonymous mapping that
// tries large pages first and silently falls back to regular pages. The
// region lives outside the Go heap, so it creates no GC pressure, and it is
// returned to the OS only by Close.
//
// # Concurrency Model
//
// Push and Pop are a single atomic operation on the tail offset and may be
// called from any number of goroutines. Clear is NOT safe to call
// concurrently with Push/Pop.
//
// Push detects exhaustion after advancing the tail, so a failing caller
// briefly owns an offset past the end before the fatal report fires. Size
// an arena with headroom for that last failed request.
//
// # Stack Discipline
//
// Pushes and pops must be paired LIFO per goroutine. The arena does not
// track individual regions; popping a region invalidates every pointer into
// it. Scratch wraps a typed push with its matching pop:
//
//	s := arena.NewScratch[float32](a, 256)
//	defer s.Release()
//	buf := s.Items
//
// # Safety
//
// Memory handed out by an arena is not scanned by the garbage collector.
// Never store Go pointers in it; Scratch element types must be pointer-free.
package arena
