package mem

// Copy copies min(len(dst), len(src)) bytes and returns the count.
func Copy(dst, src []byte) int {
	return copy(dst, src)
}
