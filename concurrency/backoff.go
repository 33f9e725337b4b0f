package concurrency

import "runtime"

const (
	// spinIterations is the number of busy-wait rounds before yielding.
	spinIterations = 2000
	maxPauseShift  = 6
)

// Backoff implements the spin-then-yield wait policy.
// The zero value is ready to use.
type Backoff struct {
	n int
}

// Wait pauses the caller. The first spinIterations calls busy-wait with an
// exponentially growing pause; later calls yield the processor.
func (b *Backoff) Wait() {
	if b.n >= spinIterations {
		runtime.Gosched()
		return
	}
	shift := b.n
	if shift > maxPauseShift {
		shift = maxPauseShift
	}
	for i := 0; i < 1<<shift; i++ {
		pause()
	}
	b.n++
}

// Reset restarts the policy from tight spinning.
func (b *Backoff) Reset() {
	b.n = 0
}

// Spinning reports whether Wait is still in the busy-wait phase.
func (b *Backoff) Spinning() bool {
	return b.n < spinIterations
}
