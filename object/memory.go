package object

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Returns the amount of free memory in bytes, relative to GOMEMLIMIT.
func FreeMemory() int64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	currentAlloc := memStats.HeapAlloc
	// retrieve the current limit.
	gomemlimit := debug.SetMemoryLimit(-1)
	return gomemlimit - int64(currentAlloc) //nolint:gosec // can be negative.
}

// SizeOk reports whether a payload of n bytes (twice, for the decoding
// copy) fits in the free memory.
func SizeOk(n int64) (bool, int64) {
	if n <= 4096 { // no checks for small payloads (one typical page)
		return true, 0
	}
	free := FreeMemory()
	return free >= 0 && 2*n < free, free
}

// CheckPayloadSize returns an error, after one GC attempt, when n bytes
// can't be safely loaded into a Value.
func CheckPayloadSize(n int64) error {
	if ok, _ := SizeOk(n); ok {
		return nil
	}
	runtime.GC()
	if ok, free := SizeOk(n); !ok {
		return fmt.Errorf("would exceed memory loading %d bytes, %d free", n, free)
	}
	return nil
}
