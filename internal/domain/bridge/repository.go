package bridge

import (
	"context"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// Filter narrows bridge listings
type Filter struct {
	shared.Filter
	Status Status
}

// Repository defines the interface for bridge campaign persistence
type Repository interface {
	// FindByID finds a bridge record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*BridgeCampaign, error)

	// FindByIDForUpdate finds a bridge record and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*BridgeCampaign, error)

	// FindByCampaignID finds the bridge record linked to a campaign
	FindByCampaignID(ctx context.Context, campaignID uuid.UUID) (*BridgeCampaign, error)

	// FindAll lists bridge records with the total count before paging
	FindAll(ctx context.Context, filter Filter) ([]BridgeCampaign, int64, error)

	// Create inserts a new bridge record
	Create(ctx context.Context, b *BridgeCampaign) error

	// Save updates an existing bridge record
	Save(ctx context.Context, b *BridgeCampaign) error
}

// OutreachRepository is the append-only outreach log
type OutreachRepository interface {
	// Create appends an outreach entry
	Create(ctx context.Context, o *Outreach) error

	// FindByBridge lists a bridge record's outreach newest first
	FindByBridge(ctx context.Context, bridgeID uuid.UUID) ([]Outreach, error)
}
