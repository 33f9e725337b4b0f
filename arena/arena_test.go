package arena

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/substrate/diag"
	"github.com/hupe1980/substrate/internal/mmap"
	"github.com/hupe1980/substrate/internal/resource"
)

func testReporter() *diag.Logger {
	return diag.Nop(diag.WithExit(func(int) {}), diag.WithStackTraces(false))
}

func newTestArena(t *testing.T, capacity int) *Arena {
	t.Helper()
	a := New(Config{Name: "test", Capacity: capacity}, testReporter())
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArena_New(t *testing.T) {
	t.Run("page rounded", func(t *testing.T) {
		a := newTestArena(t, 100)
		assert.Equal(t, uint64(mmap.PageSize()), a.Capacity())
		assert.Equal(t, uint64(0), a.Tail())
		assert.Equal(t, "test", a.Name())
	})

	t.Run("large pages fall back", func(t *testing.T) {
		a := New(Config{Capacity: 1 << 16, LargePages: true}, testReporter())
		defer a.Close()
		assert.GreaterOrEqual(t, a.Capacity(), uint64(1<<16))
		assert.Equal(t, "arena", a.Name())
		if a.Stats().HugePages {
			assert.Zero(t, a.Capacity()%mmap.LargePageSize)
		}
	})

	t.Run("invalid capacity", func(t *testing.T) {
		assert.PanicsWithError(t, "arena: invalid capacity", func() {
			New(Config{Capacity: 0}, testReporter())
		})
	})

	t.Run("budget exceeded", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1024})
		assert.PanicsWithError(t, "arena: memory limit exceeded", func() {
			New(Config{Capacity: 1 << 20, Acquirer: rc}, testReporter())
		})
		assert.Equal(t, int64(0), rc.MemoryUsage())
	})

	t.Run("budget charged and released", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
		a := New(Config{Capacity: 1 << 20, Acquirer: rc}, testReporter())
		assert.Equal(t, int64(a.Capacity()), rc.MemoryUsage())
		require.NoError(t, a.Close())
		assert.Equal(t, int64(0), rc.MemoryUsage())
		require.NoError(t, a.Close())
	})
}

func TestArena_PushPop(t *testing.T) {
	a := newTestArena(t, 4096)

	p1 := a.Push(16)
	assert.Equal(t, uint64(16), a.Tail())
	p2 := a.Push(32)
	assert.Equal(t, uint64(48), a.Tail())
	assert.Equal(t, uintptr(p1)+16, uintptr(p2))

	a.Pop(32)
	assert.Equal(t, uint64(16), a.Tail())

	p3 := a.Push(8)
	assert.Equal(t, p2, p3)

	a.Pop(8)
	a.Pop(16)
	assert.Equal(t, uint64(0), a.Tail())
}

func TestArena_PushBytes(t *testing.T) {
	a := newTestArena(t, 4096)

	b := a.PushBytes(10)
	require.Len(t, b, 10)
	assert.Equal(t, 10, cap(b))
	for _, v := range b {
		assert.Zero(t, v)
	}
	copy(b, "0123456789")

	c := a.PushBytes(4)
	assert.Equal(t, uintptr(unsafe.Pointer(&b[0]))+10, uintptr(unsafe.Pointer(&c[0])))
	assert.Equal(t, "0123456789", string(b))
}

func TestArena_PushAligned(t *testing.T) {
	a := newTestArena(t, 4096)

	a.Push(3)
	p, consumed := a.PushAligned(8, 64)
	assert.Zero(t, uintptr(p)%64)
	assert.Equal(t, a.Tail()-3, consumed)
	assert.GreaterOrEqual(t, consumed, uint64(8))

	a.Pop(consumed)
	assert.Equal(t, uint64(3), a.Tail())

	assert.PanicsWithError(t, "arena: alignment must be a power of two", func() {
		a.PushAligned(8, 3)
	})
}

func TestArena_FillExactly(t *testing.T) {
	a := newTestArena(t, 4096)
	size := a.Capacity()

	a.Push(size)
	assert.Equal(t, size, a.Tail())
	assert.Zero(t, a.Remaining())

	assert.PanicsWithError(t, "arena: out of memory", func() {
		a.Push(1)
	})
}

func TestArena_OutOfMemory(t *testing.T) {
	a := newTestArena(t, 4096)
	assert.PanicsWithError(t, "arena: out of memory", func() {
		a.Push(a.Capacity() + 1)
	})

	b := newTestArena(t, 4096)
	assert.PanicsWithError(t, "arena: out of memory", func() {
		b.PushAligned(b.Capacity()+1, 8)
	})
	assert.Equal(t, uint64(0), b.Tail())
}

func TestArena_PopUnderflow(t *testing.T) {
	a := newTestArena(t, 4096)
	a.Push(8)
	assert.PanicsWithError(t, "arena: pop exceeds pushed size", func() {
		a.Pop(9)
	})
	assert.Equal(t, uint64(8), a.Tail())
}

func TestArena_Clear(t *testing.T) {
	a := newTestArena(t, 4096)
	a.Push(100)
	a.Push(200)
	a.Clear()
	assert.Equal(t, uint64(0), a.Tail())

	s := a.Stats()
	assert.Equal(t, uint64(300), s.HighWater)
	assert.Equal(t, uint64(2), s.Pushes)
}

func TestArena_Advise(t *testing.T) {
	a := newTestArena(t, 4096)
	assert.NoError(t, a.Advise(mmap.AccessSequential))
}

func TestArena_ConcurrentPush(t *testing.T) {
	const (
		workers = 8
		pushes  = 512
		size    = 16
	)
	a := newTestArena(t, workers*pushes*size)

	var (
		mu   sync.Mutex
		seen = make(map[uintptr]struct{}, workers*pushes)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uintptr, 0, pushes)
			for range pushes {
				local = append(local, uintptr(a.Push(size)))
			}
			mu.Lock()
			for _, p := range local {
				seen[p] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*pushes)
	assert.Equal(t, uint64(workers*pushes*size), a.Tail())
}

func TestArena_String(t *testing.T) {
	a := newTestArena(t, 4096)
	assert.Contains(t, a.String(), "name: test")
}
