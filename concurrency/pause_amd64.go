//go:build amd64 && !noasm

package concurrency

// pause executes the PAUSE spin-wait hint.
func pause()
