package campaign

import (
	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// Aggregate type constant for Campaign
const AggregateTypeCampaign = "Campaign"

// Event type constants for Campaign
const (
	EventTypeCampaignCreated       = "CampaignCreated"
	EventTypeCampaignStatusChanged = "CampaignStatusChanged"
	EventTypeLeafAdded             = "LeafAdded"
	EventTypeSanctuaryClaimed      = "SanctuaryClaimed"
)

// CampaignCreatedEvent is published when a campaign is created
type CampaignCreatedEvent struct {
	shared.BaseDomainEvent
	CampaignID uuid.UUID  `json:"campaign_id"`
	Slug       string     `json:"slug"`
	BridgeID   *uuid.UUID `json:"bridge_id,omitempty"`
}

// NewCampaignCreatedEvent creates a new CampaignCreatedEvent
func NewCampaignCreatedEvent(c *Campaign) *CampaignCreatedEvent {
	return &CampaignCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCampaignCreated, AggregateTypeCampaign, c.ID),
		CampaignID:      c.ID,
		Slug:            c.Slug,
		BridgeID:        c.BridgeID,
	}
}

// CampaignStatusChangedEvent is published on publish, pause and resume
type CampaignStatusChangedEvent struct {
	shared.BaseDomainEvent
	CampaignID uuid.UUID      `json:"campaign_id"`
	From       CampaignStatus `json:"from"`
	To         CampaignStatus `json:"to"`
}

// NewCampaignStatusChangedEvent creates a new CampaignStatusChangedEvent
func NewCampaignStatusChangedEvent(c *Campaign, from, to CampaignStatus) *CampaignStatusChangedEvent {
	return &CampaignStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCampaignStatusChanged, AggregateTypeCampaign, c.ID),
		CampaignID:      c.ID,
		From:            from,
		To:              to,
	}
}

// LeafAddedEvent is published after a supporter leaf is stored
type LeafAddedEvent struct {
	shared.BaseDomainEvent
	CampaignID uuid.UUID `json:"campaign_id"`
	LeafID     uuid.UUID `json:"leaf_id"`
	Source     string    `json:"source"`
}

// NewLeafAddedEvent creates a new LeafAddedEvent
func NewLeafAddedEvent(leaf *Leaf, source string) *LeafAddedEvent {
	return &LeafAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeafAdded, AggregateTypeCampaign, leaf.CampaignID),
		CampaignID:      leaf.CampaignID,
		LeafID:          leaf.ID,
		Source:          source,
	}
}

// SanctuaryClaimedEvent is published when a patient claims the Sanctuary
type SanctuaryClaimedEvent struct {
	shared.BaseDomainEvent
	CampaignID uuid.UUID `json:"campaign_id"`
	UserID     uuid.UUID `json:"user_id"`
}

// NewSanctuaryClaimedEvent creates a new SanctuaryClaimedEvent
func NewSanctuaryClaimedEvent(c *Campaign, userID uuid.UUID) *SanctuaryClaimedEvent {
	return &SanctuaryClaimedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSanctuaryClaimed, AggregateTypeCampaign, c.ID),
		CampaignID:      c.ID,
		UserID:          userID,
	}
}
