package eventlog

import (
	"sync/atomic"
	"time"
)

// sequence hands out strictly increasing values seeded from the wall clock.
// It orders events written by one process that share an event_time.
type sequence struct {
	last atomic.Int64
	now  func() time.Time
}

func newSequence() *sequence {
	return &sequence{now: time.Now}
}

// Next returns a value greater than every value returned before it.
func (q *sequence) Next() int64 {
	for {
		last := q.last.Load()
		next := q.now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if q.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
