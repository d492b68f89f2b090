package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/analytics"
	"github.com/treeofhope/backend/internal/domain/billing"
	"github.com/treeofhope/backend/internal/domain/bridge"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// DomainEventRecorder subscribes to the event bus and turns domain events
// into analytics records
type DomainEventRecorder struct {
	tracker *Tracker
}

// NewDomainEventRecorder creates a new DomainEventRecorder
func NewDomainEventRecorder(tracker *Tracker) *DomainEventRecorder {
	return &DomainEventRecorder{tracker: tracker}
}

// EventTypes returns the domain events this handler records
func (r *DomainEventRecorder) EventTypes() []string {
	return []string{
		bridge.EventTypeBridgeScouted,
		bridge.EventTypeBridgePreBuilt,
		bridge.EventTypeBridgeSkipped,
		bridge.EventTypeBridgeStatusChanged,
		campaign.EventTypeCampaignCreated,
		campaign.EventTypeCampaignStatusChanged,
		campaign.EventTypeLeafAdded,
		campaign.EventTypeSanctuaryClaimed,
		billing.EventTypeCommitmentCreated,
		billing.EventTypeCommitmentStatusChanged,
	}
}

// Handle records the analytics event for a domain event. Unknown events are ignored.
func (r *DomainEventRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := toAnalyticsEvent(event)
	if !ok {
		return nil
	}
	r.tracker.Track(ctx, e)
	return nil
}

func toAnalyticsEvent(event shared.DomainEvent) (Event, bool) {
	switch ev := event.(type) {
	case *bridge.BridgeScoutedEvent:
		return Event{
			Name:       analytics.EventBridgeScouted,
			Properties: map[string]any{"bridge_id": ev.BridgeID.String(), "category": ev.Category},
		}, true
	case *bridge.BridgePreBuiltEvent:
		return Event{
			Name:       analytics.EventBridgePreBuilt,
			CampaignID: idPtr(ev.CampaignID),
			Properties: map[string]any{"bridge_id": ev.BridgeID.String(), "slug": ev.CampaignSlug},
		}, true
	case *bridge.BridgeSkippedEvent:
		return Event{
			Name:       analytics.EventBridgeSkipped,
			Properties: map[string]any{"bridge_id": ev.BridgeID.String(), "reason": ev.Reason},
		}, true
	case *bridge.BridgeStatusChangedEvent:
		return Event{
			Name:       analytics.EventBridgeStatus,
			CampaignID: ev.CampaignID,
			Properties: map[string]any{
				"bridge_id": ev.BridgeID.String(),
				"from":      string(ev.From),
				"to":        string(ev.To),
			},
		}, true
	case *campaign.CampaignCreatedEvent:
		props := map[string]any{"slug": ev.Slug}
		if ev.BridgeID != nil {
			props["bridge_id"] = ev.BridgeID.String()
		}
		return Event{Name: analytics.EventCampaignCreated, CampaignID: idPtr(ev.CampaignID), Properties: props}, true
	case *campaign.CampaignStatusChangedEvent:
		return Event{
			Name:       analytics.EventCampaignStatus,
			CampaignID: idPtr(ev.CampaignID),
			Properties: map[string]any{"from": string(ev.From), "to": string(ev.To)},
		}, true
	case *campaign.LeafAddedEvent:
		return Event{
			Name:       analytics.EventLeafAdded,
			CampaignID: idPtr(ev.CampaignID),
			Properties: map[string]any{"leaf_id": ev.LeafID.String(), "source": ev.Source},
		}, true
	case *campaign.SanctuaryClaimedEvent:
		return Event{
			Name:       analytics.EventSanctuaryClaimed,
			CampaignID: idPtr(ev.CampaignID),
			UserID:     idPtr(ev.UserID),
		}, true
	case *billing.CommitmentCreatedEvent:
		return Event{
			Name:       analytics.EventCheckoutSucceeded,
			CampaignID: idPtr(ev.CampaignID),
			UserID:     idPtr(ev.UserID),
			Properties: map[string]any{
				"commitment_id":        ev.CommitmentID.String(),
				"tier":                 ev.Tier,
				"monthly_amount_cents": ev.MonthlyAmountCents,
			},
		}, true
	case *billing.CommitmentStatusChangedEvent:
		return Event{
			Name:       analytics.EventCommitmentStatus,
			CampaignID: idPtr(ev.CampaignID),
			UserID:     idPtr(ev.UserID),
			Properties: map[string]any{
				"commitment_id": ev.CommitmentID.String(),
				"from":          string(ev.From),
				"to":            string(ev.To),
			},
		}, true
	}
	return Event{}, false
}

func idPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// Ensure DomainEventRecorder implements EventHandler
var _ shared.EventHandler = (*DomainEventRecorder)(nil)
