package concurrency

import "github.com/hupe1980/substrate/diag"

func testReporter() *diag.Logger {
	return diag.Nop(diag.WithExit(func(int) {}), diag.WithStackTraces(false))
}
