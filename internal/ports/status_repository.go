package ports

import (
	"context"

	"github.com/bft-labs/framebridge/internal/domain"
)

// StatusRepository persists pipeline counters so operators can inspect a
// running bridge. It is reporting only: nothing is replayed from it.
type StatusRepository interface {
	// Save persists the snapshot atomically.
	Save(ctx context.Context, status domain.Status) error

	// Load returns the last saved status, or an empty status if none exists.
	Load(ctx context.Context) (domain.Status, error)
}
