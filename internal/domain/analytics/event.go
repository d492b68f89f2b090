// Package analytics defines the product analytics events recorded by the service.
package analytics

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
	"gorm.io/datatypes"
)

// Well-known event names
const (
	EventBridgeScouted     = "bridge_scouted"
	EventBridgePreBuilt    = "bridge_pre_built"
	EventBridgeSkipped     = "bridge_skipped"
	EventBridgeStatus      = "bridge_status_changed"
	EventCampaignCreated   = "campaign_created"
	EventCampaignStatus    = "campaign_status_changed"
	EventLeafAdded         = "leaf_added"
	EventCheckoutStarted   = "checkout_started"
	EventCheckoutSucceeded = "checkout_succeeded"
	EventCommitmentStatus  = "commitment_status_changed"
	EventSanctuaryClaimed  = "sanctuary_claimed"
)

// MaxEventNameLength bounds client-supplied event names
const MaxEventNameLength = 100

// Event is one analytics record
type Event struct {
	shared.BaseEntity
	EventName  string            `gorm:"type:varchar(100);not null;index"`
	CampaignID *uuid.UUID        `gorm:"type:uuid;index"`
	UserID     *uuid.UUID        `gorm:"type:uuid"`
	SessionID  string            `gorm:"type:varchar(100)"`
	Properties datatypes.JSONMap `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Event) TableName() string {
	return "analytics_events"
}

// NewEvent creates an analytics event
func NewEvent(name string, campaignID, userID *uuid.UUID, sessionID string, properties map[string]any) (*Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Event name is required")
	}
	if len(name) > MaxEventNameLength {
		return nil, shared.NewValidationError("Event name cannot exceed 100 characters")
	}
	if properties == nil {
		properties = map[string]any{}
	}
	return &Event{
		BaseEntity: shared.NewBaseEntity(),
		EventName:  name,
		CampaignID: campaignID,
		UserID:     userID,
		SessionID:  sessionID,
		Properties: datatypes.JSONMap(properties),
	}, nil
}

// Repository persists analytics events
type Repository interface {
	// Create stores an event
	Create(ctx context.Context, e *Event) error

	// CountByName counts stored events with the given name
	CountByName(ctx context.Context, name string) (int64, error)
}
