package simd

// Lanes is the number of control words examined per probe window.
const Lanes = 8

// matchDigestImpl is the implementation function pointer.
var matchDigestImpl = matchDigestGeneric

// MatchDigest returns a bitmask with bit i set when ctrl[i]&mask == digest.
func MatchDigest(ctrl *[Lanes]uint32, digest, mask uint32) uint8 {
	return matchDigestImpl(ctrl, digest, mask)
}

// MatchEqual returns a bitmask with bit i set when ctrl[i] == v.
func MatchEqual(ctrl *[Lanes]uint32, v uint32) uint8 {
	return matchDigestImpl(ctrl, v, ^uint32(0))
}

// matchDigestGeneric compares all eight lanes without branches so the
// compiler can keep the window in registers.
func matchDigestGeneric(ctrl *[Lanes]uint32, digest, mask uint32) uint8 {
	c0, c1, c2, c3 := ctrl[0]&mask, ctrl[1]&mask, ctrl[2]&mask, ctrl[3]&mask
	c4, c5, c6, c7 := ctrl[4]&mask, ctrl[5]&mask, ctrl[6]&mask, ctrl[7]&mask

	return lane(c0 == digest, 0) | lane(c1 == digest, 1) |
		lane(c2 == digest, 2) | lane(c3 == digest, 3) |
		lane(c4 == digest, 4) | lane(c5 == digest, 5) |
		lane(c6 == digest, 6) | lane(c7 == digest, 7)
}

func lane(b bool, i uint) uint8 {
	if b {
		return 1 << i
	}
	return 0
}
