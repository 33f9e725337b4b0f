// Package mmap reserves anonymous, read-write memory directly from the OS.
//
// # Overview
//
// Arenas obtain their backing region here so that large, long-lived
// reservations stay outside the Go garbage collector's heap. A mapping is
// committed up front and released in one piece by Close.
//
// # Usage
//
//	m, err := mmap.MapAnon(64<<20, mmap.WithLargePages(true))
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes()
//	m.Advise(mmap.AccessWillNeed)
//
// # Large Pages
//
// When large pages are requested the size is rounded up to LargePageSize and
// the kernel is asked for a huge-page backed mapping first. If that fails
// (no reserved huge pages, unsupported platform) the request transparently
// falls back to regular pages rounded up to PageSize. HugePages reports which
// path succeeded.
//
// # Platform Support
//
//   - Linux: mmap(2) with MAP_HUGETLB, madvise(2) for access hints
//   - Other Unix: mmap(2) without huge pages
//   - Windows: VirtualAlloc (advise is a no-op)
//   - Everything else: a heap-allocated slice
package mmap
