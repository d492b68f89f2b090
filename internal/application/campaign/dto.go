package campaign

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/treeofhope/backend/internal/domain/campaign"
)

// CreateCampaignRequest represents a request to create a campaign
type CreateCampaignRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	PatientName string `json:"patient_name" binding:"required,min=1,max=200"`
	Story       string `json:"story" binding:"required,max=20000"`
}

// UpdateCampaignRequest represents a partial campaign update
type UpdateCampaignRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	PatientName *string `json:"patient_name" binding:"omitempty,min=1,max=200"`
	Story       *string `json:"story" binding:"omitempty,max=20000"`
}

// SubmitLeafRequest represents a leaf posted without payment
type SubmitLeafRequest struct {
	AuthorName string `json:"author_name" binding:"max=100"`
	Message    string `json:"message" binding:"required,max=500"`
	IsPublic   *bool  `json:"is_public"`
}

// SetLeafHiddenRequest toggles leaf moderation
type SetLeafHiddenRequest struct {
	IsHidden *bool `json:"is_hidden" binding:"required"`
}

// ClaimRequest represents a Sanctuary claim
type ClaimRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// CampaignListFilter represents filter options for the campaign list
type CampaignListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=draft active paused"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LeafListFilter represents filter options for the leaf list
type LeafListFilter struct {
	IncludeHidden bool `form:"include_hidden"`
}

// CampaignResponse represents a campaign in API responses
type CampaignResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Slug               string          `json:"slug"`
	Title              string          `json:"title"`
	PatientName        string          `json:"patient_name"`
	Story              string          `json:"story"`
	Status             string          `json:"status"`
	LeafCount          int             `json:"leaf_count"`
	SupporterCount     int             `json:"supporter_count"`
	MonthlyTotalCents  int64           `json:"monthly_total_cents"`
	MonthlyTotal       decimal.Decimal `json:"monthly_total"`
	BridgeID           *uuid.UUID      `json:"bridge_id,omitempty"`
	SanctuaryClaimed   bool            `json:"sanctuary_claimed"`
	SanctuaryClaimedBy *uuid.UUID      `json:"sanctuary_claimed_by,omitempty"`
	SanctuaryStartDate *string         `json:"sanctuary_start_date,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// LeafResponse represents a leaf in API responses
type LeafResponse struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	AuthorName string    `json:"author_name"`
	Message    string    `json:"message"`
	PositionX  int       `json:"position_x"`
	PositionY  int       `json:"position_y"`
	IsPublic   bool      `json:"is_public"`
	IsHidden   bool      `json:"is_hidden"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClaimResponse is returned after a Sanctuary claim
type ClaimResponse struct {
	CampaignID         uuid.UUID `json:"campaign_id"`
	Slug               string    `json:"slug"`
	SanctuaryClaimedBy uuid.UUID `json:"sanctuary_claimed_by"`
	SanctuaryStartDate string    `json:"sanctuary_start_date"`
	BridgeStatus       string    `json:"bridge_status,omitempty"`
}

// CentsToDollars converts integer cents to a two-place decimal amount
func CentsToDollars(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCampaignResponse converts a domain Campaign to CampaignResponse
func ToCampaignResponse(c *campaign.Campaign) CampaignResponse {
	resp := CampaignResponse{
		ID:                 c.ID,
		Slug:               c.Slug,
		Title:              c.Title,
		PatientName:        c.PatientName,
		Story:              c.Story,
		Status:             string(c.Status),
		LeafCount:          c.LeafCount,
		SupporterCount:     c.SupporterCount,
		MonthlyTotalCents:  c.MonthlyTotalCents,
		MonthlyTotal:       CentsToDollars(c.MonthlyTotalCents),
		BridgeID:           c.BridgeID,
		SanctuaryClaimed:   c.SanctuaryClaimed,
		SanctuaryClaimedBy: c.SanctuaryClaimedBy,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	if c.SanctuaryStartDate != nil {
		d := c.SanctuaryStartDate.Format(time.DateOnly)
		resp.SanctuaryStartDate = &d
	}
	return resp
}

// ToLeafResponse converts a domain Leaf to LeafResponse
func ToLeafResponse(l *campaign.Leaf) LeafResponse {
	return LeafResponse{
		ID:         l.ID,
		CampaignID: l.CampaignID,
		AuthorName: l.AuthorName,
		Message:    l.Message,
		PositionX:  l.PositionX,
		PositionY:  l.PositionY,
		IsPublic:   l.IsPublic,
		IsHidden:   l.IsHidden,
		CreatedAt:  l.CreatedAt,
	}
}
