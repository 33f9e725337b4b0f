// Package simd provides the probe-window kernels used by the hashmap.
//
// # Supported Platforms
//
//   - x86-64: AVX2 (8 x 32-bit lanes in one compare)
//   - everything else: unrolled Go
//
// Runtime CPU feature detection selects the implementation. Build with
// -tags noasm to force the generic Go fallback, or set SUBSTRATE_SIMD to
// "generic" to select it at runtime.
//
// # Operations
//
//   - MatchDigest: compare eight control words, masked, against a digest
//   - MatchEqual: compare eight control words against an exact value
package simd
