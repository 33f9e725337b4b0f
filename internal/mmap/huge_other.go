//go:build unix && !linux

package mmap

const hugeFlag = 0
