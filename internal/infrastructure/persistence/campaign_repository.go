package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// campaignMutableColumns are written by Save. Counters change only through the
// Increment methods and slug never changes after insert.
var campaignMutableColumns = []string{
	"title", "patient_name", "story", "status", "bridge_id",
	"sanctuary_claimed", "sanctuary_claimed_by", "sanctuary_start_date", "updated_at",
}

// GormCampaignRepository implements CampaignRepository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// FindByID finds a campaign by its ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindByIDForUpdate finds a campaign and takes a row lock
func (r *GormCampaignRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

// FindBySlug finds a campaign by its slug
func (r *GormCampaignRepository) FindBySlug(ctx context.Context, slug string) (*campaign.Campaign, error) {
	return r.first(r.db.WithContext(ctx), "slug = ?", slug)
}

func (r *GormCampaignRepository) first(query *gorm.DB, cond string, arg interface{}) (*campaign.Campaign, error) {
	var c campaign.Campaign
	if err := query.Where(cond, arg).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll lists campaigns matching the filter
func (r *GormCampaignRepository) FindAll(ctx context.Context, filter campaign.CampaignFilter) ([]campaign.Campaign, int64, error) {
	f := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&campaign.Campaign{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(patient_name) LIKE ? OR slug LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var campaigns []campaign.Campaign
	if err := query.
		Order(orderClause(f.OrderBy, f.OrderDir, CampaignSortFields)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// ExistsBySlug checks whether a slug is taken
func (r *GormCampaignRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&campaign.Campaign{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a campaign. A slug conflict leaves the transaction usable.
func (r *GormCampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).
		Create(c)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// Save updates the mutable columns of a campaign
func (r *GormCampaignRepository) Save(ctx context.Context, c *campaign.Campaign) error {
	result := r.db.WithContext(ctx).Model(c).Select(campaignMutableColumns).Updates(c)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IncrementLeafCount atomically adds delta to leaf_count
func (r *GormCampaignRepository) IncrementLeafCount(ctx context.Context, id uuid.UUID, delta int) error {
	return r.increment(ctx, id, map[string]interface{}{
		"leaf_count": gorm.Expr("leaf_count + ?", delta),
	})
}

// IncrementSupportTotals atomically adds to supporter_count and monthly_total_cents
func (r *GormCampaignRepository) IncrementSupportTotals(ctx context.Context, id uuid.UUID, supporters int, monthlyCents int64) error {
	return r.increment(ctx, id, map[string]interface{}{
		"supporter_count":     gorm.Expr("supporter_count + ?", supporters),
		"monthly_total_cents": gorm.Expr("monthly_total_cents + ?", monthlyCents),
	})
}

func (r *GormCampaignRepository) increment(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&campaign.Campaign{}).Where("id = ?", id).UpdateColumns(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCampaignRepository implements CampaignRepository
var _ campaign.CampaignRepository = (*GormCampaignRepository)(nil)
