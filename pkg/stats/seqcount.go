// pkg/stats/seqcount.go

package stats

import (
	"runtime"
	"sync/atomic"
)

/* seqCount is the generation marker paired with each shard: a reader can
detect a concurrent update and retry. The shard owner is the only writer,
so a write section is just the two marker bumps around the store. */
type seqCount struct {
	seq uint32
}

func (sc *seqCount) writeBegin() {
	atomic.AddUint32(&sc.seq, 1)
}

func (sc *seqCount) writeEnd() {
	atomic.AddUint32(&sc.seq, 1)
}

// readBegin returns the current generation, spinning past in-flight writes.
func (sc *seqCount) readBegin() uint32 {
	for {
		s := atomic.LoadUint32(&sc.seq)
		if s&1 == 0 {
			return s
		}
		runtime.Gosched()
	}
}

// readRetry reports whether a write happened since readBegin.
func (sc *seqCount) readRetry(start uint32) bool {
	return atomic.LoadUint32(&sc.seq) != start
}
