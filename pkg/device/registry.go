// pkg/device/registry.go

package device

import (
	"fmt"

	"AveRAM/pkg/blockdev"
	"AveRAM/pkg/compress"
	"AveRAM/pkg/stats"

	"github.com/google/uuid"
)

// Registry owns a fixed table of device descriptors, created up front and
// passed explicitly to whoever dispatches attribute operations.
type Registry struct {
	uuid string
	conf Config
	devs []*Device
}

// NewRegistry creates MaxDevices descriptors, each attached to a fresh
// block object named ram0, ram1, ...
func NewRegistry(conf Config) *Registry {
	conf.fill()
	compr := compress.NewCompressor(conf.Compression)
	if compr == nil {
		logger.Fatalf("unknown compress algorithm: %s", conf.Compression)
	}
	r := &Registry{uuid: uuid.New().String(), conf: conf}
	r.devs = make([]*Device, conf.MaxDevices)
	for i := range r.devs {
		r.devs[i] = &Device{
			index:     i,
			pageSize:  conf.PageSize,
			pageShift: conf.pageShift(),
			stats:     stats.New(conf.Shards),
			compr:     compr,
			bdev:      blockdev.New(fmt.Sprintf("ram%d", i)),
		}
	}
	return r
}

func (r *Registry) UUID() string {
	return r.uuid
}

func (r *Registry) Devices() []*Device {
	return r.devs
}

// Resolve maps a block object back to the owning descriptor. The table is
// small and this path is never hot, so a linear scan is fine. A nil result
// means the control plane was invoked on an object it does not own.
func (r *Registry) Resolve(bd *blockdev.Device) *Device {
	for _, d := range r.devs {
		if d.bdev == bd {
			return d
		}
	}
	return nil
}

// Lookup finds a descriptor by device name.
func (r *Registry) Lookup(name string) *Device {
	for _, d := range r.devs {
		if d.bdev.Name() == name {
			return d
		}
	}
	return nil
}
