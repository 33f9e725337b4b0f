package hashmap

import (
	"hash/maphash"
)

// Key lists the supported key types. Pointer-to-string keys hash and compare
// by the pointed-to text; a nil pointer equals only another nil pointer.
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 |
		~string | *string
}

type hasher[K Key] struct {
	hash  func(seed maphash.Seed, k K) uint64
	equal func(a, b K) bool
}

// newHasher picks the hash and equality functions for K once, at construction.
func newHasher[K Key]() hasher[K] {
	var zero K
	if _, ok := any(zero).(*string); ok {
		return hasher[K]{
			hash: func(seed maphash.Seed, k K) uint64 {
				p := any(k).(*string)
				if p == nil {
					return maphash.Comparable(seed, uintptr(0))
				}
				return maphash.String(seed, *p)
			},
			equal: func(a, b K) bool {
				pa, pb := any(a).(*string), any(b).(*string)
				if pa == nil || pb == nil {
					return pa == pb
				}
				return *pa == *pb
			},
		}
	}

	// Comparable hashes +0 and -0 alike; NaN compares unequal to itself and
	// is therefore never found.
	return hasher[K]{
		hash: maphash.Comparable[K],
		equal: func(a, b K) bool {
			return a == b
		},
	}
}
