// pkg/mempool/pool_test.go

package mempool

import (
	"bytes"
	"testing"
)

func TestPutGetDelete(t *testing.T) {
	p := New(8, 4096)
	data := []byte("compressed bytes")
	p.Put(3, data, false)
	if got := p.TotalSize(); got != uint64(len(data)) {
		t.Fatalf("TotalSize = %d, want %d", got, len(data))
	}
	pg, raw, zero, ok := p.Get(3)
	if !ok || raw || zero {
		t.Fatalf("Get = (%v, %v, %v)", raw, zero, ok)
	}
	if !bytes.Equal(pg.Data, data) {
		t.Fatalf("Get returned %q", pg.Data)
	}
	pg.Release()
	size, raw, zero, ok := p.Delete(3)
	if !ok || raw || zero || size != len(data) {
		t.Fatalf("Delete = (%d, %v, %v, %v)", size, raw, zero, ok)
	}
	if got := p.TotalSize(); got != 0 {
		t.Fatalf("TotalSize = %d after delete", got)
	}
	if _, _, _, ok := p.Get(3); ok {
		t.Fatal("slot still occupied after delete")
	}
}

func TestRawPagesNotCounted(t *testing.T) {
	p := New(4, 4096)
	page := make([]byte, 4096)
	for i := range page {
		page[i] = byte(i)
	}
	p.Put(0, page, true)
	if got := p.TotalSize(); got != 0 {
		t.Fatalf("TotalSize = %d, raw pages must not be counted", got)
	}
	pg, raw, _, ok := p.Get(0)
	if !ok || !raw {
		t.Fatalf("Get = (raw=%v, ok=%v)", raw, ok)
	}
	pg.Release()
	size, raw, _, ok := p.Delete(0)
	if !ok || !raw || size != len(page) {
		t.Fatalf("Delete = (%d, %v, %v)", size, raw, ok)
	}
}

func TestMarkZero(t *testing.T) {
	p := New(4, 4096)
	p.MarkZero(1)
	_, _, zero, ok := p.Get(1)
	if !ok || !zero {
		t.Fatalf("Get = (zero=%v, ok=%v)", zero, ok)
	}
	// overwriting clears the flag
	p.Put(1, []byte("x"), false)
	pg, _, zero, ok := p.Get(1)
	if !ok || zero {
		t.Fatalf("Get after Put = (zero=%v, ok=%v)", zero, ok)
	}
	pg.Release()
	if got := p.TotalSize(); got != 1 {
		t.Fatalf("TotalSize = %d, want 1", got)
	}
}

func TestOverwriteAccounting(t *testing.T) {
	p := New(2, 4096)
	p.Put(0, make([]byte, 100), false)
	p.Put(0, make([]byte, 30), false)
	if got := p.TotalSize(); got != 30 {
		t.Fatalf("TotalSize = %d, want 30", got)
	}
	p.MarkZero(0)
	if got := p.TotalSize(); got != 0 {
		t.Fatalf("TotalSize = %d, want 0", got)
	}
}

func TestReset(t *testing.T) {
	p := New(8, 4096)
	for i := 0; i < 8; i++ {
		p.Put(i, []byte("data"), false)
	}
	p.Reset()
	if got := p.TotalSize(); got != 0 {
		t.Fatalf("TotalSize = %d after reset", got)
	}
	for i := 0; i < 8; i++ {
		if _, _, _, ok := p.Get(i); ok {
			t.Fatalf("slot %d still occupied after reset", i)
		}
	}
}

func TestPageOutlivesDelete(t *testing.T) {
	p := New(1, 4096)
	data := []byte("still readable")
	p.Put(0, data, false)
	pg, _, _, ok := p.Get(0)
	if !ok {
		t.Fatal("Get failed")
	}
	p.Delete(0)
	// the page is freed only after the last reference is dropped
	if !bytes.Equal(pg.Data, data) {
		t.Fatalf("page content lost: %q", pg.Data)
	}
	pg.Release()
}
