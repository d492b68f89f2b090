package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/billing"
	"github.com/treeofhope/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCommitmentRepository implements CommitmentRepository using GORM
type GormCommitmentRepository struct {
	db *gorm.DB
}

// NewGormCommitmentRepository creates a new GormCommitmentRepository
func NewGormCommitmentRepository(db *gorm.DB) *GormCommitmentRepository {
	return &GormCommitmentRepository{db: db}
}

// CreateIfAbsent inserts the commitment unless (campaign_id, stripe_subscription_id) exists
func (r *GormCommitmentRepository) CreateIfAbsent(ctx context.Context, c *billing.Commitment) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "stripe_subscription_id"}},
			DoNothing: true,
		}).
		Create(c)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByID finds a commitment by its ID
func (r *GormCommitmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Commitment, error) {
	var c billing.Commitment
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByUser lists a supporter's commitments newest first
func (r *GormCommitmentRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]billing.Commitment, error) {
	commitments := []billing.Commitment{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC, id DESC").
		Find(&commitments).Error
	return commitments, err
}

// UpdateStatusBySubscription sets the status of all commitments on a subscription
func (r *GormCommitmentRepository) UpdateStatusBySubscription(ctx context.Context, subscriptionID string, status billing.CommitmentStatus, onlyFrom ...billing.CommitmentStatus) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&billing.Commitment{}).
		Where("stripe_subscription_id = ?", subscriptionID)
	if len(onlyFrom) > 0 {
		query = query.Where("status IN ?", onlyFrom)
	}
	result := query.UpdateColumns(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	return result.RowsAffected, result.Error
}

// Save updates the status of a commitment
func (r *GormCommitmentRepository) Save(ctx context.Context, c *billing.Commitment) error {
	result := r.db.WithContext(ctx).Model(c).Select("status", "updated_at").Updates(c)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCommitmentRepository implements CommitmentRepository
var _ billing.CommitmentRepository = (*GormCommitmentRepository)(nil)
