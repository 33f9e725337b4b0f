// Package concurrency provides lock-free and lock-light primitives for
// parallel goroutines sharing one address space.
//
// # Queues
//
//   - SPSCQueue: one producer, one consumer, ring of atomic pointer slots.
//     A slot is full while it holds a non-nil pointer.
//   - MPSCQueue: many producers claim ring positions with a CAS on the tail
//     counter and publish through a per-slot ready flag; one consumer reads
//     a slot once its flag is set and clears it afterwards.
//
// Neither queue blocks: Push on a full ring and Pop on an empty ring return
// false without changing state, and the caller decides whether to retry.
//
// # Spinlock
//
// Spinlock is a FIFO-fair lock. TryAcquire is a single CAS on the owner
// field. A contended Acquire enqueues a private wait flag on an MPSCQueue
// and spins on that flag only; Release hands ownership directly to the
// oldest waiter. Goroutines therefore acquire in the order they started
// waiting and a release wakes exactly one waiter.
//
// Goroutines identify themselves with a ThreadID from NextThreadID.
//
// # Atomic
//
// Atomic[T] is a generic atomic integer for any integer kind.
package concurrency
