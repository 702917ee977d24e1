package ports

import (
	"context"

	"github.com/bft-labs/framebridge/internal/domain"
)

// DeliveryFunc receives the outcome of one publish.
// It runs on the sink's own goroutines, never on the caller's.
type DeliveryFunc func(placement domain.Placement, err error)

// Sink is the asynchronous publish target bound to a single topic.
// Publish must be safe to call while delivery callbacks fire concurrently.
type Sink interface {
	// Publish submits payload without waiting for delivery.
	// onComplete is invoked exactly once with the placement or the failure.
	Publish(payload []byte, onComplete DeliveryFunc)

	// Flush blocks until every submitted payload has completed or ctx ends.
	Flush(ctx context.Context) error

	// Close flushes outstanding sends (bounded by the sink's flush timeout)
	// unless Flush already ran since the last Publish, then releases the
	// connection. Calling Close more than once is a no-op.
	Close() error
}
