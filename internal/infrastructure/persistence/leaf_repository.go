package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLeafRepository implements LeafRepository using GORM
type GormLeafRepository struct {
	db *gorm.DB
}

// NewGormLeafRepository creates a new GormLeafRepository
func NewGormLeafRepository(db *gorm.DB) *GormLeafRepository {
	return &GormLeafRepository{db: db}
}

// Create inserts a leaf
func (r *GormLeafRepository) Create(ctx context.Context, leaf *campaign.Leaf) error {
	return r.db.WithContext(ctx).Create(leaf).Error
}

// CreateBatch inserts leaves in order
func (r *GormLeafRepository) CreateBatch(ctx context.Context, leaves []*campaign.Leaf) error {
	if len(leaves) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&leaves).Error
}

// FindByID finds a leaf by its ID
func (r *GormLeafRepository) FindByID(ctx context.Context, id uuid.UUID) (*campaign.Leaf, error) {
	var leaf campaign.Leaf
	if err := r.db.WithContext(ctx).First(&leaf, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &leaf, nil
}

// FindByCampaign lists a campaign's leaves in placement order
func (r *GormLeafRepository) FindByCampaign(ctx context.Context, campaignID uuid.UUID, filter campaign.LeafFilter) ([]campaign.Leaf, error) {
	query := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID)
	if !filter.IncludeHidden {
		query = query.Where("is_hidden = ?", false)
	}
	if !filter.IncludePrivate {
		query = query.Where("is_public = ?", true)
	}

	leaves := []campaign.Leaf{}
	if err := query.Order("sequence ASC, created_at ASC").Find(&leaves).Error; err != nil {
		return nil, err
	}
	return leaves, nil
}

// CountByCampaign counts all leaf rows of a campaign
func (r *GormLeafRepository) CountByCampaign(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&campaign.Leaf{}).Where("campaign_id = ?", campaignID).Count(&count).Error
	return count, err
}

// Save updates the moderation flag of a leaf
func (r *GormLeafRepository) Save(ctx context.Context, leaf *campaign.Leaf) error {
	result := r.db.WithContext(ctx).Model(leaf).Select("is_hidden", "updated_at").Updates(leaf)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormLeafRepository implements LeafRepository
var _ campaign.LeafRepository = (*GormLeafRepository)(nil)
