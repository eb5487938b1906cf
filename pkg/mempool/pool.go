// pkg/mempool/pool.go

package mempool

import (
	"sync"

	"AveRAM/pkg/utils"
)

var logger = utils.GetLogger("averam")

const (
	slotZero uint8 = 1 << iota // page is all zero, no data held
	slotRaw                    // page stored uncompressed
)

type slotEntry struct {
	page  *Page
	size  int32
	flags uint8
}

// Pool holds the stored form of every page of one device, one slot per page
// index. It stands in for the backing allocator: TotalSize reports the bytes
// occupied by compressed data.
type Pool struct {
	sync.Mutex
	pageSize int
	slots    []slotEntry
	used     int64
}

// New creates a pool with one slot per page.
func New(pages, pageSize int) *Pool {
	return &Pool{pageSize: pageSize, slots: make([]slotEntry, pages)}
}

func (p *Pool) Pages() int {
	return len(p.slots)
}

// Put stores data for a page, replacing any previous content. raw marks
// data kept uncompressed; raw bytes are accounted by the caller, not by
// TotalSize.
func (p *Pool) Put(index int, data []byte, raw bool) {
	pg := newPage(len(data))
	copy(pg.Data, data)
	p.Lock()
	defer p.Unlock()
	p.drop(index)
	s := &p.slots[index]
	s.page = pg
	s.size = int32(len(data))
	if raw {
		s.flags = slotRaw
	} else {
		p.used += int64(len(data))
	}
}

// MarkZero records a page as all zero without storing data.
func (p *Pool) MarkZero(index int) {
	p.Lock()
	defer p.Unlock()
	p.drop(index)
	p.slots[index].flags = slotZero
}

// Get returns the stored content of a page. A non-nil page is acquired and
// must be released by the caller. ok is false for a slot that was never
// written; zero reports an all-zero page.
func (p *Pool) Get(index int) (pg *Page, raw, zero, ok bool) {
	p.Lock()
	defer p.Unlock()
	s := &p.slots[index]
	if s.flags&slotZero != 0 {
		return nil, false, true, true
	}
	if s.page == nil {
		return nil, false, false, false
	}
	s.page.Acquire()
	return s.page, s.flags&slotRaw != 0, false, true
}

// Delete frees a page slot and reports what was there.
func (p *Pool) Delete(index int) (size int, raw, zero, ok bool) {
	p.Lock()
	defer p.Unlock()
	s := &p.slots[index]
	if s.flags == 0 && s.page == nil {
		return 0, false, false, false
	}
	size = int(s.size)
	raw = s.flags&slotRaw != 0
	zero = s.flags&slotZero != 0
	p.drop(index)
	return size, raw, zero, true
}

// drop frees slot content; the caller holds the lock.
func (p *Pool) drop(index int) {
	s := &p.slots[index]
	if s.page != nil {
		if s.flags&slotRaw == 0 {
			p.used -= int64(s.size)
		}
		s.page.Release()
		s.page = nil
	}
	s.size = 0
	s.flags = 0
}

// TotalSize returns the bytes occupied by compressed pages.
func (p *Pool) TotalSize() uint64 {
	p.Lock()
	defer p.Unlock()
	return uint64(p.used)
}

// Reset releases every page.
func (p *Pool) Reset() {
	p.Lock()
	defer p.Unlock()
	for i := range p.slots {
		p.drop(i)
	}
	if p.used != 0 {
		logger.Errorf("pool still accounts %d bytes after reset", p.used)
		p.used = 0
	}
}
