// pkg/device/config.go

package device

import (
	"math/bits"
	"os"
	"runtime"
)

// Config for a device registry.
type Config struct {
	MaxDevices  int    // size of the device table
	PageSize    int    // host page granularity, defaults to the OS page size
	Shards      int    // counter shards, defaults to one per CPU
	Compression string // lz4, zstd or none, defaults to lz4
}

func (c *Config) fill() {
	if c.MaxDevices <= 0 {
		c.MaxDevices = 1
	}
	if c.PageSize <= 0 {
		c.PageSize = os.Getpagesize()
	}
	if c.PageSize&(c.PageSize-1) != 0 {
		logger.Fatalf("page size %d is not a power of two", c.PageSize)
	}
	if c.Shards <= 0 {
		c.Shards = runtime.GOMAXPROCS(0)
	}
	if c.Compression == "" {
		c.Compression = "lz4"
	}
}

func (c *Config) pageShift() uint {
	return uint(bits.TrailingZeros(uint(c.PageSize)))
}
