//go:build !amd64 || noasm

package simd

func bindKernels(ISA) {
	matchDigestImpl = matchDigestGeneric
}
