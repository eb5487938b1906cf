// pkg/device/io.go

package device

import (
	"sync/atomic"
	"syscall"

	"AveRAM/pkg/stats"
)

// maxComprSize is the threshold above which a compressed page is not worth
// keeping: store the original instead.
func (d *Device) maxComprSize() int {
	return d.pageSize * 3 / 4
}

// valid reports whether index addresses a page inside the device.
func (d *Device) valid(index int) bool {
	return index >= 0 && uint64(index) < atomic.LoadUint64(&d.disksize)>>d.pageShift
}

// WritePage stores one page of data at a page index. cpu selects the
// caller's counter shard and must have a single concurrent user.
func (d *Device) WritePage(cpu, index int, data []byte) syscall.Errno {
	if len(data) != d.pageSize || !d.valid(index) {
		d.stats.Add(cpu, stats.InvalidIO, 1)
		return syscall.EINVAL
	}
	d.ensureInit()
	d.bdev.BeginIO()
	defer d.bdev.EndIO()
	d.stats.Add(cpu, stats.NumWrites, 1)
	d.freeSlot(cpu, index)
	if isZero(data) {
		d.pool.MarkZero(index)
		d.stats.Add(cpu, stats.PagesZero, 1)
		return 0
	}
	buf := make([]byte, d.compr.CompressBound(d.pageSize))
	clen, err := d.compr.Compress(buf, data)
	if err != nil || clen > d.maxComprSize() {
		// poorly compressible, keep the original page
		d.pool.Put(index, data, true)
		d.stats.Add(cpu, stats.PagesExpand, 1)
		clen = d.pageSize
	} else {
		d.pool.Put(index, buf[:clen], false)
	}
	d.stats.Add(cpu, stats.PagesStored, 1)
	d.stats.Add(cpu, stats.ComprSize, int64(clen))
	return 0
}

// ReadPage fills buf with the content of a page. Pages never written, all
// zero, or dropped read back as zeros.
func (d *Device) ReadPage(cpu, index int, buf []byte) syscall.Errno {
	if len(buf) != d.pageSize || !d.valid(index) {
		d.stats.Add(cpu, stats.InvalidIO, 1)
		return syscall.EINVAL
	}
	d.ensureInit()
	d.bdev.BeginIO()
	defer d.bdev.EndIO()
	d.stats.Add(cpu, stats.NumReads, 1)
	pg, raw, _, ok := d.pool.Get(index)
	if !ok || pg == nil {
		for i := range buf {
			buf[i] = 0
		}
		return 0
	}
	defer pg.Release()
	if raw {
		copy(buf, pg.Data)
		return 0
	}
	n, err := d.compr.Decompress(buf, pg.Data)
	if err != nil || n != d.pageSize {
		logger.Errorf("%s: decompress page %d: %s", d.Name(), index, err)
		return syscall.EIO
	}
	return 0
}

// Discard drops n pages starting at a page index.
func (d *Device) Discard(cpu, index, n int) syscall.Errno {
	if n <= 0 || !d.valid(index) || !d.valid(index+n-1) {
		d.stats.Add(cpu, stats.InvalidIO, 1)
		return syscall.EINVAL
	}
	d.ensureInit()
	d.bdev.BeginIO()
	defer d.bdev.EndIO()
	d.stats.Add(cpu, stats.Discard, 1)
	for i := 0; i < n; i++ {
		d.freeSlot(cpu, index+i)
	}
	return 0
}

// NotifyFree handles a free notification for one page, e.g. a swap slot
// being released.
func (d *Device) NotifyFree(cpu, index int) {
	if !d.valid(index) || !d.initialized() {
		return
	}
	d.bdev.BeginIO()
	defer d.bdev.EndIO()
	d.stats.Add(cpu, stats.NotifyFree, 1)
	d.freeSlot(cpu, index)
}

// freeSlot drops the previous content of a page and rolls its counters
// back on the caller's shard.
func (d *Device) freeSlot(cpu, index int) {
	size, raw, zero, ok := d.pool.Delete(index)
	if !ok {
		return
	}
	if zero {
		d.stats.Add(cpu, stats.PagesZero, -1)
		return
	}
	if raw {
		d.stats.Add(cpu, stats.PagesExpand, -1)
	}
	d.stats.Add(cpu, stats.PagesStored, -1)
	d.stats.Add(cpu, stats.ComprSize, -int64(size))
}

func isZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
