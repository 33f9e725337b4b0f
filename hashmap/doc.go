// Package hashmap implements an open-addressing hash map probed eight
// control words at a time.
//
// # Layout
//
// Entries live in three dense, parallel vectors: keys, values and the
// control slot each entry occupies. The control table holds one 32-bit word
// per bucket:
//
//	bits 31..29  probe window the occupant was placed in (its distance)
//	bits 28..0   digest of the occupant's hash (never zero)
//
// A zero word marks an empty bucket. The table capacity is a power of two
// and at least eight.
//
// # Probing
//
// A key's ideal bucket is h & (capacity-1). Window p starts p*8 buckets
// later and is clamped so it never reads past capacity-8. Each window's
// digests are compared against the key's digest in one SIMD step; only
// matching lanes touch the dense key vector. At most MaxProbeLength windows
// are examined per hash, and up to MaxRehashes further seeds are tried
// before a key is reported absent.
//
// Insert uses Robin-Hood displacement: within a window it takes an empty
// lane or evicts an occupant placed in an earlier window, preferring the
// smallest stored distance and, on a tie, the empty lane. An evicted entry
// is placed again from scratch. When nothing can be placed the table doubles
// and every entry is re-placed from the dense vectors.
//
// Removal clears the control word and swap-removes the dense triple,
// patching the control slot of the entry that moved.
//
// A Map is not safe for concurrent use.
package hashmap
