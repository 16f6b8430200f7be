package catalog

import "sync/atomic"

// Sequence issues item identities.
type Sequence interface {
	Next() int
}

// Counter is a monotonic Sequence starting at 1. It never resets and is
// safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Next() int {
	return int(c.n.Add(1))
}

var processSeq = NewCounter()

// ProcessSequence returns the sequence shared by every store in the process.
func ProcessSequence() Sequence { return processSeq }
