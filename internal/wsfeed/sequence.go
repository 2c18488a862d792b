package wsfeed

import (
	"sync"
	"sync/atomic"
)

// sequencer hands out a monotonic per-symbol sequence number, the same
// shape as the teacher's package-level seqMap/nextSeq but instance-scoped
// to a Hub instead of global, so tests can run multiple hubs without
// sharing counters.
type sequencer struct {
	counters sync.Map // map[string]*uint64
}

func (s *sequencer) next(symbol string) uint64 {
	v, _ := s.counters.LoadOrStore(symbol, new(uint64))
	ptr := v.(*uint64)
	return atomic.AddUint64(ptr, 1)
}
