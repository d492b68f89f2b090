package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/treeofhope/backend/internal/domain/billing"
)

// ActivateRequest represents a request to plant a leaf and start a monthly commitment
type ActivateRequest struct {
	AuthorName      string `json:"author_name" binding:"max=100"`
	Message         string `json:"message" binding:"required,max=500"`
	IsPublic        *bool  `json:"is_public"`
	Email           string `json:"email" binding:"required,email"`
	Tier            string `json:"tier" binding:"required"`
	JoiningGiftTier string `json:"joining_gift_tier"`
	SuccessURL      string `json:"success_url" binding:"omitempty,url"`
	CancelURL       string `json:"cancel_url" binding:"omitempty,url"`
	SessionID       string `json:"session_id" binding:"max=100"`
}

// ActivateResponse carries the hosted checkout the visitor is redirected to
type ActivateResponse struct {
	CheckoutURL string    `json:"checkout_url"`
	SessionID   string    `json:"session_id"`
	LeafID      uuid.UUID `json:"leaf_id"`
}

// CommitmentResponse represents a commitment in API responses
type CommitmentResponse struct {
	ID                 uuid.UUID       `json:"id"`
	CampaignID         uuid.UUID       `json:"campaign_id"`
	Tier               string          `json:"tier"`
	MonthlyAmountCents int64           `json:"monthly_amount_cents"`
	MonthlyAmount      decimal.Decimal `json:"monthly_amount"`
	Status             string          `json:"status"`
	StartedAt          time.Time       `json:"started_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ToCommitmentResponse converts a domain Commitment to CommitmentResponse
func ToCommitmentResponse(c *billing.Commitment) CommitmentResponse {
	return CommitmentResponse{
		ID:                 c.ID,
		CampaignID:         c.CampaignID,
		Tier:               c.Tier,
		MonthlyAmountCents: c.MonthlyAmountCents,
		MonthlyAmount:      decimal.New(c.MonthlyAmountCents, -2),
		Status:             string(c.Status),
		StartedAt:          c.StartedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
