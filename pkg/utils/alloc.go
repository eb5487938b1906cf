// pkg/utils/alloc.go

package utils

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

var allocated int64

// Alloc returns a buffer allocated outside the Go heap, so page data does
// not add to GC scan cost. The buffer must be returned with Free.
func Alloc(size int) []byte {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		panic(err)
	}
	atomic.AddInt64(&allocated, int64(size))
	return b
}

// Free returns a buffer from Alloc back to the OS.
func Free(b []byte) {
	atomic.AddInt64(&allocated, -int64(cap(b)))
	if err := unix.Munmap(b[:cap(b)]); err != nil {
		panic(err)
	}
}

// AllocMemory returns the size of currently allocated off-heap memory.
func AllocMemory() int64 {
	return atomic.LoadInt64(&allocated)
}
