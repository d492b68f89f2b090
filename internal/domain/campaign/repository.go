package campaign

import (
	"context"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// CampaignFilter narrows campaign listings
type CampaignFilter struct {
	shared.Filter
	Status CampaignStatus
}

// LeafFilter controls which leaves a listing returns
type LeafFilter struct {
	IncludeHidden  bool
	IncludePrivate bool
}

// CampaignRepository defines the interface for campaign persistence
type CampaignRepository interface {
	// FindByID finds a campaign by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// FindByIDForUpdate finds a campaign and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// FindBySlug finds a campaign by its slug
	FindBySlug(ctx context.Context, slug string) (*Campaign, error)

	// FindAll lists campaigns with the total count before paging
	FindAll(ctx context.Context, filter CampaignFilter) ([]Campaign, int64, error)

	// ExistsBySlug checks whether a slug is taken
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// Create inserts a new campaign. Returns ErrAlreadyExists on a slug conflict.
	Create(ctx context.Context, c *Campaign) error

	// Save updates an existing campaign
	Save(ctx context.Context, c *Campaign) error

	// IncrementLeafCount atomically adds delta to leaf_count
	IncrementLeafCount(ctx context.Context, id uuid.UUID, delta int) error

	// IncrementSupportTotals atomically adds to supporter_count and monthly_total_cents
	IncrementSupportTotals(ctx context.Context, id uuid.UUID, supporters int, monthlyCents int64) error
}

// LeafRepository defines the interface for leaf persistence
type LeafRepository interface {
	// Create inserts a leaf
	Create(ctx context.Context, leaf *Leaf) error

	// CreateBatch inserts leaves in the given order
	CreateBatch(ctx context.Context, leaves []*Leaf) error

	// FindByID finds a leaf by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Leaf, error)

	// FindByCampaign lists a campaign's leaves oldest first
	FindByCampaign(ctx context.Context, campaignID uuid.UUID, filter LeafFilter) ([]Leaf, error)

	// CountByCampaign counts all leaf rows of a campaign
	CountByCampaign(ctx context.Context, campaignID uuid.UUID) (int64, error)

	// Save updates a leaf
	Save(ctx context.Context, leaf *Leaf) error
}

// MembershipRepository defines the interface for membership persistence
type MembershipRepository interface {
	// Ensure inserts the membership unless an identical one exists.
	// Returns true when a row was created.
	Ensure(ctx context.Context, m *Membership) (bool, error)

	// FindByUser lists memberships of a user
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)

	// FindByCampaign lists memberships of a campaign, optionally filtered by role
	FindByCampaign(ctx context.Context, campaignID uuid.UUID, role MembershipRole) ([]Membership, error)
}
