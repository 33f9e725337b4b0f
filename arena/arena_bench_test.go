package arena

import (
	"runtime"
	"testing"
)

// BenchmarkScratchVsHeap compares arena scratch buffers with heap slices.
func BenchmarkScratchVsHeap(b *testing.B) {
	const count = 1024

	b.Run("Heap", func(b *testing.B) {
		var m1, m2 runtime.MemStats
		runtime.GC()
		runtime.ReadMemStats(&m1)

		b.ResetTimer()
		for b.Loop() {
			buf := make([]float32, count)
			buf[count-1] = 1
			_ = buf
		}
		b.StopTimer()

		runtime.ReadMemStats(&m2)
		b.ReportMetric(float64(m2.NumGC-m1.NumGC), "gcs")
	})

	b.Run("Arena", func(b *testing.B) {
		a := New(Config{Capacity: 1 << 20}, testReporter())
		defer a.Close()

		var m1, m2 runtime.MemStats
		runtime.GC()
		runtime.ReadMemStats(&m1)

		b.ResetTimer()
		for b.Loop() {
			s := NewScratch[float32](a, count)
			s.Items[count-1] = 1
			s.Release()
		}
		b.StopTimer()

		runtime.ReadMemStats(&m2)
		b.ReportMetric(float64(m2.NumGC-m1.NumGC), "gcs")
	})
}

func BenchmarkPushPop(b *testing.B) {
	a := New(Config{Capacity: 1 << 20}, testReporter())
	defer a.Close()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			a.Push(64)
			a.Pop(64)
		}
	})
}
