package concurrency

import "sync/atomic"

// ThreadID identifies a lock owner. The zero value means no owner.
type ThreadID uint64

// NoOwner is the owner value of an unlocked Spinlock.
const NoOwner ThreadID = 0

var threadIDs atomic.Uint64

// NextThreadID returns a process-unique, non-zero ThreadID.
// A goroutine that takes part in Spinlock ownership obtains one at start
// and uses it for every Acquire/Release.
func NextThreadID() ThreadID {
	return ThreadID(threadIDs.Add(1))
}
