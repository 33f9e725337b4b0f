//go:build linux

package mmap

import "golang.org/x/sys/unix"

const hugeFlag = unix.MAP_HUGETLB
