package persistence

import (
	"context"

	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/analytics"
	"github.com/treeofhope/backend/internal/domain/billing"
	"github.com/treeofhope/backend/internal/domain/bridge"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Campaigns() campaign.CampaignRepository {
	return NewGormCampaignRepository(r.tx)
}

func (r *gormTransactionalRepositories) Leaves() campaign.LeafRepository {
	return NewGormLeafRepository(r.tx)
}

func (r *gormTransactionalRepositories) Memberships() campaign.MembershipRepository {
	return NewGormMembershipRepository(r.tx)
}

func (r *gormTransactionalRepositories) Bridges() bridge.Repository {
	return NewGormBridgeRepository(r.tx)
}

func (r *gormTransactionalRepositories) Outreach() bridge.OutreachRepository {
	return NewGormOutreachRepository(r.tx)
}

func (r *gormTransactionalRepositories) Commitments() billing.CommitmentRepository {
	return NewGormCommitmentRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appshared.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

// AllModels lists every persisted model, used by test setup and AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&campaign.Campaign{},
		&campaign.Leaf{},
		&campaign.Membership{},
		&bridge.BridgeCampaign{},
		&bridge.Outreach{},
		&billing.Commitment{},
		&analytics.Event{},
	}
}
