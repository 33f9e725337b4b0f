package concurrency

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSpinlock_TryAcquireRelease(t *testing.T) {
	l := NewSpinlock(4, testReporter())
	a, b := NextThreadID(), NextThreadID()

	require.True(t, l.TryAcquire(a))
	assert.Equal(t, a, l.Owner())
	assert.False(t, l.TryAcquire(b))
	assert.False(t, l.TryAcquire(a), "not reentrant")

	assert.False(t, l.Release(b), "only the owner releases")
	assert.Equal(t, a, l.Owner())

	assert.True(t, l.Release(a))
	assert.Equal(t, NoOwner, l.Owner())
	assert.False(t, l.Release(a))

	require.True(t, l.TryAcquire(b))
	assert.True(t, l.Release(b))
}

func TestSpinlock_ZeroOwnerRejected(t *testing.T) {
	l := NewSpinlock(0, testReporter())
	assert.PanicsWithError(t, "concurrency: spinlock owner must be non-zero", func() { l.TryAcquire(NoOwner) })
	assert.False(t, l.Release(NoOwner))
}

func TestSpinlock_MutualExclusion(t *testing.T) {
	const (
		workers = 8
		iters   = 2000
	)
	l := NewSpinlock(workers, testReporter())
	counter := 0

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			id := NextThreadID()
			for i := 0; i < iters; i++ {
				l.Acquire(id)
				counter++
				l.Release(id)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, workers*iters, counter)
	assert.Equal(t, NoOwner, l.Owner())
	assert.Equal(t, 0, l.Waiting())
}

func TestSpinlock_FIFO(t *testing.T) {
	const waiters = 6
	l := NewSpinlock(waiters, testReporter())
	main := NextThreadID()
	require.True(t, l.TryAcquire(main))

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := NextThreadID()
			l.Acquire(id)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			l.Release(id)
		}()

		// Waiter i must be queued before waiter i+1 starts.
		for l.Waiting() != i+1 {
			runtime.Gosched()
		}
	}

	require.True(t, l.Release(main))
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, order)
	assert.Equal(t, NoOwner, l.Owner())
}
