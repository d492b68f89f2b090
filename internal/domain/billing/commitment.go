package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// CommitmentStatus is the lifecycle status of a recurring commitment
type CommitmentStatus string

const (
	CommitmentStatusActive    CommitmentStatus = "active"
	CommitmentStatusPastDue   CommitmentStatus = "past_due"
	CommitmentStatusCancelled CommitmentStatus = "cancelled"
	CommitmentStatusPaused    CommitmentStatus = "paused"
)

// IsValid reports whether s is a known status
func (s CommitmentStatus) IsValid() bool {
	switch s {
	case CommitmentStatusActive, CommitmentStatusPastDue, CommitmentStatusCancelled, CommitmentStatusPaused:
		return true
	}
	return false
}

// Provider subscription statuses that map to something other than active
const (
	ProviderStatusPastDue  = "past_due"
	ProviderStatusCanceled = "canceled"
)

// MapProviderStatus converts a payment provider subscription status to a
// commitment status. A subscription with collection paused is paused
// regardless of its nominal status, unless it is past due or canceled.
func MapProviderStatus(providerStatus string, collectionPaused bool) CommitmentStatus {
	switch providerStatus {
	case ProviderStatusPastDue:
		return CommitmentStatusPastDue
	case ProviderStatusCanceled:
		return CommitmentStatusCancelled
	}
	if collectionPaused {
		return CommitmentStatusPaused
	}
	return CommitmentStatusActive
}

// Commitment is a supporter's recurring monthly payment to a campaign.
// There is at most one commitment per campaign and provider subscription.
type Commitment struct {
	shared.BaseAggregateRoot
	CampaignID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_commitment_campaign_subscription,priority:1"`
	UserID               uuid.UUID        `gorm:"type:uuid;not null;index"`
	StripeSubscriptionID string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_commitment_campaign_subscription,priority:2;index"`
	StripeCustomerID     string           `gorm:"type:varchar(255)"`
	Tier                 string           `gorm:"type:varchar(50);not null"`
	MonthlyAmountCents   int64            `gorm:"not null;default:0"`
	Status               CommitmentStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	StartedAt            time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Commitment) TableName() string {
	return "commitments"
}

// NewCommitment creates an active commitment from a completed checkout
func NewCommitment(campaignID, userID uuid.UUID, subscriptionID, customerID, tier string, monthlyAmountCents int64) (*Commitment, error) {
	if campaignID == uuid.Nil {
		return nil, shared.NewValidationError("Campaign ID is required")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("User ID is required")
	}
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, shared.NewValidationError("Subscription ID is required")
	}
	if monthlyAmountCents < 0 {
		return nil, shared.NewValidationError("Monthly amount cannot be negative")
	}
	if tier == "" {
		tier = "custom"
	}

	c := &Commitment{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		CampaignID:           campaignID,
		UserID:               userID,
		StripeSubscriptionID: subscriptionID,
		StripeCustomerID:     customerID,
		Tier:                 tier,
		MonthlyAmountCents:   monthlyAmountCents,
		Status:               CommitmentStatusActive,
	}
	c.StartedAt = c.CreatedAt
	c.AddDomainEvent(NewCommitmentCreatedEvent(c))
	return c, nil
}

// Pause is the supporter's hardship pause
func (c *Commitment) Pause() error {
	if c.Status != CommitmentStatusActive && c.Status != CommitmentStatusPastDue {
		return shared.NewInvalidStateError("Only active or past due commitments can be paused")
	}
	c.setStatus(CommitmentStatusPaused)
	return nil
}

// Resume ends a hardship pause
func (c *Commitment) Resume() error {
	if c.Status != CommitmentStatusPaused {
		return shared.NewInvalidStateError("Only paused commitments can be resumed")
	}
	c.setStatus(CommitmentStatusActive)
	return nil
}

// IsOwnedBy reports whether userID is the supporter of this commitment
func (c *Commitment) IsOwnedBy(userID uuid.UUID) bool {
	return c.UserID == userID
}

func (c *Commitment) setStatus(to CommitmentStatus) {
	from := c.Status
	c.Status = to
	c.Touch()
	c.AddDomainEvent(NewCommitmentStatusChangedEvent(c, from, to))
}
