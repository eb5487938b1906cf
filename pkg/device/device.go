// pkg/device/device.go

package device

import (
	"sync"
	"sync/atomic"

	"AveRAM/pkg/blockdev"
	"AveRAM/pkg/compress"
	"AveRAM/pkg/mempool"
	"AveRAM/pkg/stats"
	"AveRAM/pkg/utils"
)

var logger = utils.GetLogger("averam")

const sectorShift = 9

// Device is the in-memory descriptor of one compressed block device.
type Device struct {
	sync.Mutex // guards disksize and init/reset transitions

	index     int
	disksize  uint64 // bytes, always a multiple of the page size
	initDone  int32  // set once by the first I/O, cleared only by reset
	pageSize  int
	pageShift uint

	stats *stats.Set
	compr compress.Compressor
	bdev  *blockdev.Device

	// pool is created by the first I/O and dropped by reset; reset cannot
	// run while I/O is in flight (holder check + flush), so the I/O path
	// reads it without the lock.
	pool *mempool.Pool
}

func (d *Device) Name() string {
	return d.bdev.Name()
}

// BlockObject returns the block object this descriptor is attached to, the
// opaque handle the control plane is keyed by.
func (d *Device) BlockObject() *blockdev.Device {
	return d.bdev
}

func (d *Device) PageSize() int {
	return d.pageSize
}

func (d *Device) initialized() bool {
	return atomic.LoadInt32(&d.initDone) != 0
}

// ensureInit sets up the page pool on first use.
func (d *Device) ensureInit() {
	if d.initialized() {
		return
	}
	d.Lock()
	defer d.Unlock()
	if d.initialized() {
		return
	}
	size := atomic.LoadUint64(&d.disksize)
	d.pool = mempool.New(int(size>>d.pageShift), d.pageSize)
	atomic.StoreInt32(&d.initDone, 1)
	logger.Infof("%s: initialized, %d pages of %d bytes (%s)",
		d.Name(), d.pool.Pages(), d.pageSize, d.compr.Name())
}

// resetDevice frees all stored pages, zeroes the counters, clears the
// initialized flag and resets the capacity to zero.
func (d *Device) resetDevice() {
	d.Lock()
	defer d.Unlock()
	if d.pool != nil {
		d.pool.Reset()
		d.pool = nil
	}
	d.stats.Reset()
	atomic.StoreInt32(&d.initDone, 0)
	atomic.StoreUint64(&d.disksize, 0)
	d.bdev.SetCapacity(0)
	logger.Infof("%s: reset", d.Name())
}

// memUsedTotal is the pool's occupied bytes plus the uncompressed pages
// kept outside it; zero before the device is initialized.
func (d *Device) memUsedTotal() uint64 {
	d.Lock()
	defer d.Unlock()
	if !d.initialized() || d.pool == nil {
		return 0
	}
	return d.pool.TotalSize() + d.stats.Sum(stats.PagesExpand)<<d.pageShift
}
