package bridge

import (
	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// Aggregate type constant for BridgeCampaign
const AggregateTypeBridge = "BridgeCampaign"

// Event type constants for BridgeCampaign
const (
	EventTypeBridgeScouted       = "BridgeScouted"
	EventTypeBridgePreBuilt      = "BridgePreBuilt"
	EventTypeBridgeSkipped       = "BridgeSkipped"
	EventTypeBridgeStatusChanged = "BridgeStatusChanged"
)

// BridgeScoutedEvent is published when a fundraiser is recorded
type BridgeScoutedEvent struct {
	shared.BaseDomainEvent
	BridgeID  uuid.UUID `json:"bridge_id"`
	SourceURL string    `json:"source_url"`
	Category  string    `json:"category,omitempty"`
}

// NewBridgeScoutedEvent creates a new BridgeScoutedEvent
func NewBridgeScoutedEvent(b *BridgeCampaign) *BridgeScoutedEvent {
	return &BridgeScoutedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBridgeScouted, AggregateTypeBridge, b.ID),
		BridgeID:        b.ID,
		SourceURL:       b.SourceURL,
		Category:        b.Category,
	}
}

// BridgePreBuiltEvent is published when a draft campaign was generated
type BridgePreBuiltEvent struct {
	shared.BaseDomainEvent
	BridgeID     uuid.UUID `json:"bridge_id"`
	CampaignID   uuid.UUID `json:"campaign_id"`
	CampaignSlug string    `json:"campaign_slug"`
}

// NewBridgePreBuiltEvent creates a new BridgePreBuiltEvent
func NewBridgePreBuiltEvent(b *BridgeCampaign, c *campaign.Campaign) *BridgePreBuiltEvent {
	return &BridgePreBuiltEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBridgePreBuilt, AggregateTypeBridge, b.ID),
		BridgeID:        b.ID,
		CampaignID:      c.ID,
		CampaignSlug:    c.Slug,
	}
}

// BridgeSkippedEvent is published when an operator passes on a scouted record
type BridgeSkippedEvent struct {
	shared.BaseDomainEvent
	BridgeID uuid.UUID `json:"bridge_id"`
	Reason   string    `json:"reason,omitempty"`
}

// NewBridgeSkippedEvent creates a new BridgeSkippedEvent
func NewBridgeSkippedEvent(b *BridgeCampaign, reason string) *BridgeSkippedEvent {
	return &BridgeSkippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBridgeSkipped, AggregateTypeBridge, b.ID),
		BridgeID:        b.ID,
		Reason:          reason,
	}
}

// BridgeStatusChangedEvent is published on activation, claim and manual moves
type BridgeStatusChangedEvent struct {
	shared.BaseDomainEvent
	BridgeID   uuid.UUID  `json:"bridge_id"`
	CampaignID *uuid.UUID `json:"campaign_id,omitempty"`
	From       Status     `json:"from"`
	To         Status     `json:"to"`
}

// NewBridgeStatusChangedEvent creates a new BridgeStatusChangedEvent
func NewBridgeStatusChangedEvent(b *BridgeCampaign, from, to Status) *BridgeStatusChangedEvent {
	return &BridgeStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBridgeStatusChanged, AggregateTypeBridge, b.ID),
		BridgeID:        b.ID,
		CampaignID:      b.CampaignID,
		From:            from,
		To:              to,
	}
}
