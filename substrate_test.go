package substrate

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/substrate/arena"
	"github.com/hupe1980/substrate/concurrency"
	"github.com/hupe1980/substrate/diag"
	"github.com/hupe1980/substrate/internal/mmap"
	"github.com/hupe1980/substrate/pool"
)

func testLogger() *diag.Logger {
	return diag.Nop(diag.WithExit(func(int) {}), diag.WithStackTraces(false))
}

func TestNew_Defaults(t *testing.T) {
	rt, err := New()
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Logger())
	assert.NotNil(t, rt.Reporter())
	assert.NotNil(t, rt.Allocator())
	assert.Empty(t, rt.Arenas())
}

func TestNew_Arenas(t *testing.T) {
	rt, err := New(
		WithLogger(testLogger()),
		WithArena("frame", 1<<16),
		WithArena("level", 1<<17),
		WithLargePages(true),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"frame", "level"}, rt.Arenas())

	frame, ok := rt.Arena("frame")
	require.True(t, ok)
	assert.GreaterOrEqual(t, frame.Capacity(), uint64(1<<16))

	_, ok = rt.Arena("missing")
	assert.False(t, ok)

	s := rt.MemoryStats()
	assert.Len(t, s.Arenas, 2)
	assert.GreaterOrEqual(t, s.Used, int64(3<<16))

	require.NoError(t, rt.Close())
	require.NoError(t, rt.Close())
	assert.Empty(t, rt.Arenas())
	assert.Equal(t, int64(0), rt.MemoryStats().Used)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithLogger(testLogger()), WithMemoryLimit(-1))
	assert.ErrorIs(t, err, ErrInvalidMemoryLimit)

	_, err = New(WithLogger(testLogger()), WithArena("", 4096))
	assert.ErrorIs(t, err, ErrInvalidArena)

	_, err = New(WithLogger(testLogger()), WithArena("a", 0))
	assert.ErrorIs(t, err, ErrInvalidArena)

	_, err = New(WithLogger(testLogger()), WithArena("a", 4096), WithArena("a", 4096))
	assert.ErrorIs(t, err, ErrArenaExists)
}

func TestRuntime_MemoryLimit(t *testing.T) {
	limit := int64(4 * mmap.PageSize())
	rt, err := New(WithLogger(testLogger()), WithMemoryLimit(limit))
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.NewArena("small", mmap.PageSize())
	require.NoError(t, err)

	assert.PanicsWithError(t, "arena: memory limit exceeded", func() {
		_, _ = rt.NewArena("big", int(limit))
	})

	v := NewVector[byte](rt, "bytes", 0)
	assert.PanicsWithError(t, "alloc: memory limit exceeded", func() {
		v.Reserve(int(limit))
	})

	s := rt.MemoryStats()
	assert.Equal(t, limit, s.Limit)
	assert.LessOrEqual(t, s.Peak, limit)
}

func TestRuntime_ClosedRejectsArenas(t *testing.T) {
	rt, err := New(WithLogger(testLogger()))
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	_, err = rt.NewArena("late", 4096)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRuntime_CloseWarnsOnLeaks(t *testing.T) {
	var buf bytes.Buffer
	logger := diag.New(slog.NewTextHandler(&buf, nil), diag.WithExit(func(int) {}))

	rt, err := New(WithLogger(logger))
	require.NoError(t, err)

	v := NewVector[int](rt, "leaked", 4)
	v.Push(1)
	require.NoError(t, rt.Close())
	assert.Contains(t, buf.String(), "runtime closed with live allocations")
}

type spyReporter struct {
	warnings []string
}

func (s *spyReporter) Fatal(msg string, _ ...any) { panic(&diag.FatalError{Msg: msg}) }
func (s *spyReporter) Warn(msg string, _ ...any)  { s.warnings = append(s.warnings, msg) }

type particle struct {
	pool.Slot
	X, Y float32
}

func TestRuntime_Components(t *testing.T) {
	spy := &spyReporter{}
	rt, err := New(WithLogger(testLogger()), WithReporter(spy), WithArena("scratch", 1<<16))
	require.NoError(t, err)
	defer rt.Close()

	assert.Same(t, spy, rt.Reporter())

	p := NewPool[particle](rt, 1)
	require.NotNil(t, p.GetVacant())
	assert.Nil(t, p.GetVacant())
	assert.Equal(t, []string{"pool: capacity exhausted"}, spy.warnings)

	ps := NewPools[particle](rt, 1)
	ps.GetVacant()
	ps.GetVacant()
	assert.Equal(t, 2, ps.NumPools())

	m := NewMap[string, int](rt)
	m.Insert("a", 1)
	assert.True(t, m.Contains("a"))
	assert.Positive(t, rt.MemoryStats().Allocator.LiveBytes)

	a, _ := rt.Arena("scratch")
	s := arena.NewScratch[float32](a, 64)
	assert.Equal(t, 64, s.Len())
	s.Release()
	assert.Equal(t, uint64(0), a.Tail())
}

func TestRuntime_SpinlockGuardedMap(t *testing.T) {
	rt, err := New(WithLogger(testLogger()))
	require.NoError(t, err)
	defer rt.Close()

	m := NewMap[int, int](rt)
	lock := concurrency.NewSpinlock(8, rt.Reporter())

	const workers, per = 4, 250
	done := make(chan struct{})
	for w := range workers {
		go func() {
			defer func() { done <- struct{}{} }()
			id := concurrency.NextThreadID()
			for i := range per {
				lock.Acquire(id)
				m.Insert(w*per+i, i)
				lock.Release(id)
			}
		}()
	}
	for range workers {
		<-done
	}

	assert.Equal(t, workers*per, m.Len())
}
