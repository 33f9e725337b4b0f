//go:build amd64 && !noasm

package simd

//go:noescape
func matchDigestAVX2(ctrl *[Lanes]uint32, digest, mask uint32) uint8

func bindKernels(isa ISA) {
	if isa == AVX2 {
		matchDigestImpl = matchDigestAVX2
		return
	}
	matchDigestImpl = matchDigestGeneric
}
