package storage

import (
	"sync"

	"crosspool/internal/model"
)

// Collector buffers events emitted by pools and stamps each with a
// monotonically increasing sequence number. Drained batches go to a
// durable sink.
type Collector struct {
	mu     sync.Mutex
	next   uint64
	buffer []model.PoolEvent
}

func NewCollector() *Collector {
	return &Collector{next: 1}
}

// Record implements the pool event sink.
func (c *Collector) Record(event model.PoolEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	event.Seq = c.next
	c.next++
	c.buffer = append(c.buffer, event)
}

// Drain returns the buffered events and resets the buffer. Sequence
// numbering continues across drains.
func (c *Collector) Drain() []model.PoolEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	drained := c.buffer
	c.buffer = nil
	return drained
}
