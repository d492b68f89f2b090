package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMembershipRepository implements MembershipRepository using GORM
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// Ensure inserts the membership unless the same (campaign, user, role) exists
func (r *GormMembershipRepository) Ensure(ctx context.Context, m *campaign.Membership) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "user_id"}, {Name: "role"}},
			DoNothing: true,
		}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByUser lists memberships of a user
func (r *GormMembershipRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]campaign.Membership, error) {
	memberships := []campaign.Membership{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error
	return memberships, err
}

// FindByCampaign lists memberships of a campaign. An empty role matches all.
func (r *GormMembershipRepository) FindByCampaign(ctx context.Context, campaignID uuid.UUID, role campaign.MembershipRole) ([]campaign.Membership, error) {
	query := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	memberships := []campaign.Membership{}
	err := query.Order("created_at ASC").Find(&memberships).Error
	return memberships, err
}

// Ensure GormMembershipRepository implements MembershipRepository
var _ campaign.MembershipRepository = (*GormMembershipRepository)(nil)
