// pkg/stats/stats.go

package stats

import (
	"runtime"
	"sync/atomic"

	"AveRAM/pkg/utils"
)

var logger = utils.GetLogger("averam")

// Kind identifies one device statistic.
type Kind int

const (
	NumReads Kind = iota
	NumWrites
	InvalidIO
	NotifyFree
	Discard
	PagesZero
	PagesStored
	ComprSize
	PagesExpand
	numKinds
)

var kindNames = [numKinds]string{
	"num_reads",
	"num_writes",
	"invalid_io",
	"notify_free",
	"discard",
	"zero_pages",
	"pages_stored",
	"compr_size",
	"pages_expand",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

/* shard is one execution context's private slice of every counter. Only the
owner writes it; readers synchronize through the sequence counter. Padded so
two owners never share a cache line. */
type shard struct {
	seqCount
	count [numKinds]int64
	_     [48]byte
}

// Set holds one logical counter per Kind, sharded per execution context so
// writers on different contexts never contend.
type Set struct {
	shards []shard
}

// New creates a Set with the given number of shards, one per concurrent
// writer. Zero means one per CPU.
func New(shards int) *Set {
	if shards <= 0 {
		shards = runtime.GOMAXPROCS(0)
	}
	return &Set{shards: make([]shard, shards)}
}

func (s *Set) Shards() int {
	return len(s.shards)
}

// Add applies delta to cpu's private shard. It never blocks and never fails.
// Each cpu value must have a single concurrent caller.
func (s *Set) Add(cpu int, k Kind, delta int64) {
	sh := &s.shards[cpu%len(s.shards)]
	sh.writeBegin()
	atomic.StoreInt64(&sh.count[k], sh.count[k]+delta)
	sh.writeEnd()
}

/* Sum returns a consistent total of k across all shards. An individual
shard can go negative when increment and decrement for the same page land
on different shards, but the total never should: that would mean a broken
call site, so it is reported and returned reinterpreted as unsigned. */
func (s *Set) Sum(k Kind) uint64 {
	var val int64
	for i := range s.shards {
		sh := &s.shards[i]
		var temp int64
		for {
			start := sh.readBegin()
			temp = atomic.LoadInt64(&sh.count[k])
			if !sh.readRetry(start) {
				break
			}
		}
		val += temp
	}
	if val < 0 {
		logger.Warnf("sum of %s is negative: %d", k, val)
	}
	return uint64(val)
}

// Reset zeroes every shard. The caller must guarantee there are no
// concurrent writers.
func (s *Set) Reset() {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.writeBegin()
		for k := range sh.count {
			atomic.StoreInt64(&sh.count[k], 0)
		}
		sh.writeEnd()
	}
}
