// pkg/device/attr.go

package device

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"AveRAM/pkg/blockdev"
	"AveRAM/pkg/stats"
)

type attribute struct {
	show  func(d *Device) uint64
	store func(d *Device, buf string) syscall.Errno
}

func statShow(k stats.Kind) func(*Device) uint64 {
	return func(d *Device) uint64 { return d.stats.Sum(k) }
}

var attrs = map[string]attribute{
	"disksize":        {show: (*Device).disksizeShow, store: (*Device).disksizeStore},
	"initstate":       {show: (*Device).initstateShow},
	"reset":           {store: (*Device).resetStore},
	"num_reads":       {show: statShow(stats.NumReads)},
	"num_writes":      {show: statShow(stats.NumWrites)},
	"invalid_io":      {show: statShow(stats.InvalidIO)},
	"notify_free":     {show: statShow(stats.NotifyFree)},
	"discard":         {show: statShow(stats.Discard)},
	"zero_pages":      {show: statShow(stats.PagesZero)},
	"orig_data_size":  {show: (*Device).origDataSizeShow},
	"compr_data_size": {show: statShow(stats.ComprSize)},
	"mem_used_total":  {show: (*Device).memUsedTotal},
}

var attrNames = []string{
	"disksize",
	"initstate",
	"reset",
	"num_reads",
	"num_writes",
	"invalid_io",
	"notify_free",
	"discard",
	"zero_pages",
	"orig_data_size",
	"compr_data_size",
	"mem_used_total",
}

// Attrs lists the attribute names offered by the control plane.
func Attrs() []string {
	return attrNames
}

// Show formats the value of a named attribute as decimal text with a
// trailing newline.
func (r *Registry) Show(bd *blockdev.Device, name string) (string, syscall.Errno) {
	d := r.Resolve(bd)
	if d == nil {
		logger.Errorf("show %s: block object %s is not owned by this registry", name, bd.Name())
		return "", syscall.ENODEV
	}
	a, ok := attrs[name]
	if !ok || a.show == nil {
		return "", syscall.ENOENT
	}
	return fmt.Sprintf("%d\n", a.show(d)), 0
}

// Store applies a write to a named attribute and returns the number of
// bytes consumed.
func (r *Registry) Store(bd *blockdev.Device, name, buf string) (int, syscall.Errno) {
	d := r.Resolve(bd)
	if d == nil {
		logger.Errorf("store %s: block object %s is not owned by this registry", name, bd.Name())
		return 0, syscall.ENODEV
	}
	a, ok := attrs[name]
	if !ok || a.store == nil {
		return 0, syscall.ENOENT
	}
	if errno := a.store(d, buf); errno != 0 {
		return 0, errno
	}
	return len(buf), 0
}

func (d *Device) disksizeShow() uint64 {
	return atomic.LoadUint64(&d.disksize)
}

func (d *Device) disksizeStore(buf string) syscall.Errno {
	d.Lock()
	defer d.Unlock()
	if d.initialized() {
		logger.Infof("%s: cannot change disksize for initialized device", d.Name())
		return syscall.EBUSY
	}
	size, err := strconv.ParseUint(strings.TrimSpace(buf), 10, 64)
	if err != nil {
		return syscall.EINVAL
	}
	size &^= uint64(d.pageSize - 1)
	atomic.StoreUint64(&d.disksize, size)
	d.bdev.SetCapacity(size >> sectorShift)
	return 0
}

func (d *Device) initstateShow() uint64 {
	if d.initialized() {
		return 1
	}
	return 0
}

func (d *Device) resetStore(buf string) syscall.Errno {
	// do not reset an active device
	if d.bdev.Holders() > 0 {
		return syscall.EBUSY
	}
	doReset, err := strconv.ParseUint(strings.TrimSpace(buf), 10, 64)
	if err != nil {
		return syscall.EINVAL
	}
	if doReset == 0 {
		return syscall.EINVAL
	}
	// make sure all pending I/O is finished
	d.bdev.Fsync()
	if d.initialized() {
		d.resetDevice()
	}
	return 0
}

func (d *Device) origDataSizeShow() uint64 {
	return d.stats.Sum(stats.PagesStored) << d.pageShift
}
