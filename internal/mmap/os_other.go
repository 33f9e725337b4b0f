//go:build !unix && !windows

package mmap

import (
	"errors"
	"os"
)

func osPageSize() int {
	return os.Getpagesize()
}

func osMapAnon(size int, huge bool) ([]byte, func([]byte) error, error) {
	if huge {
		return nil, nil, errors.New("mmap: large pages unsupported")
	}
	return make([]byte, size), nil, nil
}

func osAdvise([]byte, AccessPattern) error {
	return nil
}
