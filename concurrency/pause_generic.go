//go:build !amd64 || noasm

package concurrency

//go:noinline
func pause() {}
