// pkg/blockdev/blockdev.go

package blockdev

import (
	"sync"
	"sync/atomic"
	"time"

	"AveRAM/pkg/utils"
)

var logger = utils.GetLogger("averam")

// Device models the host's generic block object: who holds it open, its
// capacity in sectors, and the in-flight requests a flush has to wait for.
type Device struct {
	sync.Mutex
	name     string
	capacity uint64 // sectors
	holders  int32
	inflight int
	drained  *utils.Cond
}

func New(name string) *Device {
	d := &Device{name: name}
	d.drained = utils.NewCond(d)
	return d
}

func (d *Device) Name() string {
	return d.name
}

// Open adds a holder.
func (d *Device) Open() {
	atomic.AddInt32(&d.holders, 1)
}

// Close drops a holder.
func (d *Device) Close() {
	if atomic.AddInt32(&d.holders, -1) < 0 {
		logger.Errorf("%s: unbalanced close", d.name)
	}
}

// Holders returns the current open count.
func (d *Device) Holders() int {
	return int(atomic.LoadInt32(&d.holders))
}

// SetCapacity sets the device capacity in sectors.
func (d *Device) SetCapacity(sectors uint64) {
	d.Lock()
	d.capacity = sectors
	d.Unlock()
}

// Capacity returns the device capacity in sectors.
func (d *Device) Capacity() uint64 {
	d.Lock()
	defer d.Unlock()
	return d.capacity
}

// BeginIO marks a request in flight.
func (d *Device) BeginIO() {
	d.Lock()
	d.inflight++
	d.Unlock()
}

// EndIO retires a request.
func (d *Device) EndIO() {
	d.Lock()
	d.inflight--
	if d.inflight <= 0 {
		d.drained.Broadcast()
	}
	d.Unlock()
}

// Fsync blocks until all in-flight requests have completed.
func (d *Device) Fsync() {
	d.Lock()
	for d.inflight > 0 {
		if d.drained.WaitWithTimeout(time.Second) && d.inflight > 0 {
			logger.Infof("%s: still waiting for %d requests", d.name, d.inflight)
		}
	}
	d.Unlock()
}
