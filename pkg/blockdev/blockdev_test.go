// pkg/blockdev/blockdev_test.go

package blockdev

import (
	"testing"
	"time"
)

func TestHolders(t *testing.T) {
	d := New("ram0")
	if d.Holders() != 0 {
		t.Fatalf("holders = %d", d.Holders())
	}
	d.Open()
	d.Open()
	d.Close()
	if d.Holders() != 1 {
		t.Fatalf("holders = %d, want 1", d.Holders())
	}
}

func TestCapacity(t *testing.T) {
	d := New("ram0")
	d.SetCapacity(8)
	if got := d.Capacity(); got != 8 {
		t.Fatalf("capacity = %d, want 8", got)
	}
}

func TestFsyncImmediate(t *testing.T) {
	d := New("ram0")
	done := make(chan struct{})
	go func() {
		d.Fsync()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Fsync blocked with no I/O in flight")
	}
}

func TestFsyncWaitsForIO(t *testing.T) {
	d := New("ram0")
	d.BeginIO()
	d.BeginIO()
	start := time.Now()
	go func() {
		time.Sleep(50 * time.Millisecond)
		d.EndIO()
		time.Sleep(50 * time.Millisecond)
		d.EndIO()
	}()
	d.Fsync()
	if time.Since(start) < 100*time.Millisecond {
		t.Fatal("Fsync returned before in-flight I/O completed")
	}
}
