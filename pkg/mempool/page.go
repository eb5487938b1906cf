// pkg/mempool/page.go

package mempool

import (
	"runtime"
	"sync/atomic"

	"AveRAM/pkg/utils"
)

// Page is a refcounted buffer holding the stored form of one device page.
// The bytes live outside the Go heap.
type Page struct {
	refs int32
	Data []byte
}

func newPage(size int) *Page {
	if size <= 0 {
		panic("size of page should > 0")
	}
	p := &Page{refs: 1, Data: utils.Alloc(size)}
	runtime.SetFinalizer(p, func(p *Page) {
		refCnt := atomic.LoadInt32(&p.refs)
		if refCnt != 0 {
			logger.Errorf("refcount of page %p is not zero: %d", p, refCnt)
			if refCnt > 0 {
				p.Release()
			}
		}
	})
	return p
}

// Acquire increases the refcount
func (p *Page) Acquire() {
	atomic.AddInt32(&p.refs, 1)
}

// Release decreases the refcount
func (p *Page) Release() {
	if atomic.AddInt32(&p.refs, -1) == 0 {
		utils.Free(p.Data)
		p.Data = nil
	}
}
