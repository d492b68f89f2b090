// Package shared holds application-layer contracts used by more than one service.
package shared

import (
	"context"

	"github.com/treeofhope/backend/internal/domain/billing"
	"github.com/treeofhope/backend/internal/domain/bridge"
	"github.com/treeofhope/backend/internal/domain/campaign"
)

// TransactionScope runs a unit of work atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories that share one transaction.
//
// Row locks taken through the FindByIDForUpdate methods are held until the
// transaction ends, so a campaign locked here serialises leaf index assignment
// and counter updates for that campaign.
type TransactionalRepositories interface {
	Campaigns() campaign.CampaignRepository
	Leaves() campaign.LeafRepository
	Memberships() campaign.MembershipRepository
	Bridges() bridge.Repository
	Outreach() bridge.OutreachRepository
	Commitments() billing.CommitmentRepository
}
