package storage

import "crosspool/internal/model"

// Sink receives batches of pool events.
type Sink interface {
	PutEventBatch(events []model.PoolEvent) error
}
