package billing

import (
	"context"

	"github.com/google/uuid"
)

// CommitmentRepository defines the interface for commitment persistence
type CommitmentRepository interface {
	// CreateIfAbsent inserts the commitment unless one already exists for the
	// same campaign and subscription. Returns true when a row was inserted.
	CreateIfAbsent(ctx context.Context, c *Commitment) (bool, error)

	// FindByID finds a commitment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Commitment, error)

	// FindByUser lists a supporter's commitments newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Commitment, error)

	// UpdateStatusBySubscription sets the status of every commitment on the
	// subscription and returns the number of rows changed. Unknown IDs change zero rows.
	// When onlyFrom is given, only commitments currently in one of those statuses change.
	UpdateStatusBySubscription(ctx context.Context, subscriptionID string, status CommitmentStatus, onlyFrom ...CommitmentStatus) (int64, error)

	// Save updates an existing commitment
	Save(ctx context.Context, c *Commitment) error
}
