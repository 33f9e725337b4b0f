package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/substrate/diag"
	"github.com/hupe1980/substrate/internal/mem"
	"github.com/hupe1980/substrate/internal/resource"
)

func testAllocator(opts ...Option) *Allocator {
	return New(diag.Nop(diag.WithExit(func(int) {}), diag.WithStackTraces(false)), opts...)
}

func TestAllocator_AllocateDeallocate(t *testing.T) {
	a := testAllocator()

	buf := a.Allocate(100, "frame")
	require.Len(t, buf, 100)
	assert.True(t, mem.IsAligned(buf, mem.BlockAlignment))

	info, ok := a.Lookup(unsafe.Pointer(&buf[0]))
	require.True(t, ok)
	assert.Equal(t, "frame", info.Name)
	assert.Equal(t, 100, info.Size)

	s := a.Stats()
	assert.Equal(t, int64(100), s.LiveBytes)
	assert.Equal(t, int64(1), s.LiveBlocks)
	assert.Equal(t, NameStats{LiveBytes: 100, LiveBlocks: 1, TotalAllocs: 1}, s.ByName["frame"])

	a.Deallocate(buf)
	_, ok = a.Lookup(unsafe.Pointer(&buf[0]))
	assert.False(t, ok)

	s = a.Stats()
	assert.Equal(t, int64(0), s.LiveBytes)
	assert.Equal(t, uint64(1), s.TotalFrees)
	assert.Equal(t, int64(0), s.ByName["frame"].LiveBlocks)
}

func TestAllocator_ZeroSize(t *testing.T) {
	a := testAllocator()
	assert.Nil(t, a.Allocate(0, "x"))
	a.Deallocate(nil)
	assert.Equal(t, int64(0), a.Stats().LiveBlocks)
}

func TestAllocator_UnnamedTag(t *testing.T) {
	a := testAllocator()
	buf := a.Allocate(8, "")
	info, ok := a.Lookup(unsafe.Pointer(&buf[0]))
	require.True(t, ok)
	assert.Equal(t, Unnamed, info.Name)
}

func TestAllocator_DoubleFreeIsFatal(t *testing.T) {
	a := testAllocator()
	buf := a.Allocate(16, "x")
	a.Deallocate(buf)

	assert.PanicsWithError(t, "alloc: invalid free", func() { a.Deallocate(buf) })
	assert.PanicsWithError(t, "alloc: invalid free", func() { a.Deallocate(make([]byte, 4)) })
}

func TestAllocator_Reallocate(t *testing.T) {
	a := testAllocator()

	buf := a.Allocate(4, "grow")
	copy(buf, "abcd")

	bigger := a.Reallocate(buf, 8)
	require.Len(t, bigger, 8)
	assert.Equal(t, []byte("abcd\x00\x00\x00\x00"), bigger)

	smaller := a.Reallocate(bigger, 2)
	assert.Equal(t, []byte("ab"), smaller)

	info, ok := a.Lookup(unsafe.Pointer(&smaller[0]))
	require.True(t, ok)
	assert.Equal(t, "grow", info.Name)
	assert.Equal(t, int64(1), a.Stats().LiveBlocks)

	assert.Nil(t, a.Reallocate(smaller, 0))
	assert.Equal(t, int64(0), a.Stats().LiveBlocks)

	fresh := a.Reallocate(nil, 3)
	assert.Len(t, fresh, 3)

	assert.PanicsWithError(t, "alloc: reallocate of unknown block", func() {
		a.Reallocate(make([]byte, 3), 5)
	})
}

func TestAllocator_Each(t *testing.T) {
	a := testAllocator()
	a.Allocate(8, "a")
	a.Allocate(16, "b")
	a.Allocate(32, "c")

	var names []string
	var last uintptr
	a.Each(func(info Info) bool {
		assert.Greater(t, info.Addr, last)
		last = info.Addr
		names = append(names, info.Name)
		return true
	})
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names)

	count := 0
	a.Each(func(Info) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestAllocator_MemoryBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
	a := testAllocator(WithMemoryAcquirer(rc))

	buf := a.Allocate(64, "x")
	assert.Equal(t, int64(64), rc.MemoryUsage())

	assert.PanicsWithError(t, "alloc: memory limit exceeded", func() { a.Allocate(1, "y") })

	a.Deallocate(buf)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestAllocator_Concurrent(t *testing.T) {
	a := testAllocator()

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 500; j++ {
				buf := a.Allocate(64, "worker")
				a.Deallocate(buf)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	s := a.Stats()
	assert.Equal(t, int64(0), s.LiveBlocks)
	assert.Equal(t, uint64(4000), s.TotalAllocs)
	assert.Equal(t, uint64(4000), s.TotalFrees)
}
