package persistence

import (
	"context"

	"github.com/treeofhope/backend/internal/domain/analytics"
	"gorm.io/gorm"
)

// GormAnalyticsRepository implements analytics.Repository using GORM
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// Create stores an event
func (r *GormAnalyticsRepository) Create(ctx context.Context, e *analytics.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// CountByName counts stored events with the given name
func (r *GormAnalyticsRepository) CountByName(ctx context.Context, name string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&analytics.Event{}).Where("event_name = ?", name).Count(&count).Error
	return count, err
}

// Ensure GormAnalyticsRepository implements analytics.Repository
var _ analytics.Repository = (*GormAnalyticsRepository)(nil)
