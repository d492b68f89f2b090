package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/bridge"
	"github.com/treeofhope/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBridgeRepository implements bridge.Repository using GORM
type GormBridgeRepository struct {
	db *gorm.DB
}

// NewGormBridgeRepository creates a new GormBridgeRepository
func NewGormBridgeRepository(db *gorm.DB) *GormBridgeRepository {
	return &GormBridgeRepository{db: db}
}

// FindByID finds a bridge record by its ID
func (r *GormBridgeRepository) FindByID(ctx context.Context, id uuid.UUID) (*bridge.BridgeCampaign, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindByIDForUpdate finds a bridge record and takes a row lock
func (r *GormBridgeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bridge.BridgeCampaign, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

// FindByCampaignID finds the bridge record linked to a campaign
func (r *GormBridgeRepository) FindByCampaignID(ctx context.Context, campaignID uuid.UUID) (*bridge.BridgeCampaign, error) {
	return r.first(r.db.WithContext(ctx), "campaign_id = ?", campaignID)
}

func (r *GormBridgeRepository) first(query *gorm.DB, cond string, arg interface{}) (*bridge.BridgeCampaign, error) {
	var b bridge.BridgeCampaign
	if err := query.Where(cond, arg).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindAll lists bridge records matching the filter
func (r *GormBridgeRepository) FindAll(ctx context.Context, filter bridge.Filter) ([]bridge.BridgeCampaign, int64, error) {
	f := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&bridge.BridgeCampaign{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(organiser_name) LIKE ? OR slug LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []bridge.BridgeCampaign
	if err := query.
		Order(orderClause(f.OrderBy, f.OrderDir, BridgeSortFields)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Create inserts a bridge record
func (r *GormBridgeRepository) Create(ctx context.Context, b *bridge.BridgeCampaign) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// Save updates the pipeline columns of a bridge record
func (r *GormBridgeRepository) Save(ctx context.Context, b *bridge.BridgeCampaign) error {
	result := r.db.WithContext(ctx).Model(b).
		Select("status", "campaign_id", "claimed_by", "updated_at").
		Updates(b)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormBridgeRepository implements bridge.Repository
var _ bridge.Repository = (*GormBridgeRepository)(nil)

// GormOutreachRepository implements bridge.OutreachRepository using GORM
type GormOutreachRepository struct {
	db *gorm.DB
}

// NewGormOutreachRepository creates a new GormOutreachRepository
func NewGormOutreachRepository(db *gorm.DB) *GormOutreachRepository {
	return &GormOutreachRepository{db: db}
}

// Create appends an outreach entry
func (r *GormOutreachRepository) Create(ctx context.Context, o *bridge.Outreach) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// FindByBridge lists outreach for a bridge record newest first
func (r *GormOutreachRepository) FindByBridge(ctx context.Context, bridgeID uuid.UUID) ([]bridge.Outreach, error) {
	entries := []bridge.Outreach{}
	err := r.db.WithContext(ctx).
		Where("bridge_id = ?", bridgeID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

// Ensure GormOutreachRepository implements bridge.OutreachRepository
var _ bridge.OutreachRepository = (*GormOutreachRepository)(nil)
