// pkg/stats/stats_test.go

package stats

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSumExactUnderConcurrency(t *testing.T) {
	const workers = 8
	const perWorker = 100000
	s := New(workers)

	stop := make(chan struct{})
	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		var last uint64
		for {
			v := s.Sum(NumWrites)
			if v < last {
				t.Errorf("sum went backwards: %d -> %d", last, v)
				return
			}
			if v > workers*perWorker {
				t.Errorf("sum overshoot: %d", v)
				return
			}
			last = v
			select {
			case <-stop:
				return
			default:
			}
		}
	}()

	var wg sync.WaitGroup
	for cpu := 0; cpu < workers; cpu++ {
		wg.Add(1)
		go func(cpu int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Add(cpu, NumWrites, 1)
			}
		}(cpu)
	}
	wg.Wait()
	close(stop)
	readers.Wait()

	if got := s.Sum(NumWrites); got != workers*perWorker {
		t.Fatalf("sum = %d, want %d", got, workers*perWorker)
	}
}

func TestSumWithMixedDeltas(t *testing.T) {
	const workers = 4
	s := New(workers)
	var expected int64
	var wg sync.WaitGroup
	for cpu := 0; cpu < workers; cpu++ {
		wg.Add(1)
		go func(cpu int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(cpu)))
			for i := 0; i < 10000; i++ {
				d := r.Int63n(100) - 40
				s.Add(cpu, ComprSize, d)
				atomic.AddInt64(&expected, d)
			}
		}(cpu)
	}
	wg.Wait()
	want := atomic.LoadInt64(&expected)
	if want < 0 {
		t.Skipf("random deltas summed negative: %d", want)
	}
	if got := s.Sum(ComprSize); got != uint64(want) {
		t.Fatalf("sum = %d, want %d", got, want)
	}
}

func TestShardsMayGoNegative(t *testing.T) {
	s := New(4)
	s.Add(0, PagesStored, 5)
	s.Add(1, PagesStored, -3)
	if got := s.Sum(PagesStored); got != 2 {
		t.Fatalf("sum = %d, want 2", got)
	}
}

func TestNegativeSumReinterpreted(t *testing.T) {
	s := New(2)
	s.Add(0, PagesZero, -10)
	var want uint64 = 1<<64 - 10
	if got := s.Sum(PagesZero); got != want {
		t.Fatalf("sum = %d, want %d", got, want)
	}
}

func TestReset(t *testing.T) {
	s := New(3)
	for cpu := 0; cpu < 3; cpu++ {
		s.Add(cpu, NumReads, 7)
		s.Add(cpu, Discard, 2)
	}
	s.Reset()
	for k := Kind(0); k < numKinds; k++ {
		if got := s.Sum(k); got != 0 {
			t.Fatalf("sum of %s = %d after reset", k, got)
		}
	}
}

func TestShardFallback(t *testing.T) {
	s := New(2)
	// cpu values beyond the shard count wrap around
	s.Add(5, NotifyFree, 1)
	if got := s.Sum(NotifyFree); got != 1 {
		t.Fatalf("sum = %d, want 1", got)
	}
}

func TestKindString(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{NumReads, "num_reads"},
		{PagesExpand, "pages_expand"},
		{Kind(100), "unknown"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(c.k), got, c.want)
		}
	}
}
