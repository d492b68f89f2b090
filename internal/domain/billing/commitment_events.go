package billing

import (
	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// Aggregate type constant for Commitment
const AggregateTypeCommitment = "Commitment"

// Event type constants for Commitment
const (
	EventTypeCommitmentCreated       = "CommitmentCreated"
	EventTypeCommitmentStatusChanged = "CommitmentStatusChanged"
)

// CommitmentCreatedEvent is published after a checkout is applied
type CommitmentCreatedEvent struct {
	shared.BaseDomainEvent
	CommitmentID       uuid.UUID `json:"commitment_id"`
	CampaignID         uuid.UUID `json:"campaign_id"`
	UserID             uuid.UUID `json:"user_id"`
	Tier               string    `json:"tier"`
	MonthlyAmountCents int64     `json:"monthly_amount_cents"`
}

// NewCommitmentCreatedEvent creates a new CommitmentCreatedEvent
func NewCommitmentCreatedEvent(c *Commitment) *CommitmentCreatedEvent {
	return &CommitmentCreatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeCommitmentCreated, AggregateTypeCommitment, c.ID),
		CommitmentID:       c.ID,
		CampaignID:         c.CampaignID,
		UserID:             c.UserID,
		Tier:               c.Tier,
		MonthlyAmountCents: c.MonthlyAmountCents,
	}
}

// CommitmentStatusChangedEvent is published on supporter pause and resume
type CommitmentStatusChangedEvent struct {
	shared.BaseDomainEvent
	CommitmentID uuid.UUID        `json:"commitment_id"`
	CampaignID   uuid.UUID        `json:"campaign_id"`
	UserID       uuid.UUID        `json:"user_id"`
	From         CommitmentStatus `json:"from"`
	To           CommitmentStatus `json:"to"`
}

// NewCommitmentStatusChangedEvent creates a new CommitmentStatusChangedEvent
func NewCommitmentStatusChangedEvent(c *Commitment, from, to CommitmentStatus) *CommitmentStatusChangedEvent {
	return &CommitmentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommitmentStatusChanged, AggregateTypeCommitment, c.ID),
		CommitmentID:    c.ID,
		CampaignID:      c.CampaignID,
		UserID:          c.UserID,
		From:            from,
		To:              to,
	}
}
