package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a processed provider event id is kept
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore claims provider event ids so a redelivered webhook is
// applied at most once
type IdempotencyStore interface {
	// MarkProcessed claims eventID for ttl. It reports false when the id was
	// already claimed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// Release gives up a claim after handling failed, so the provider's
	// retry is processed.
	Release(ctx context.Context, eventID string) error
	Close() error
}
