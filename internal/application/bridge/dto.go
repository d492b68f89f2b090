package bridge

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/treeofhope/backend/internal/domain/bridge"
)

// ScoutRequest represents a request to record an external fundraiser
type ScoutRequest struct {
	SourceURL     string `json:"source_url" binding:"required,url,max=2000"`
	Title         string `json:"title" binding:"max=200"`
	OrganiserName string `json:"organiser_name" binding:"max=200"`
	RaisedCents   int64  `json:"raised_cents" binding:"min=0"`
	GoalCents     int64  `json:"goal_cents" binding:"min=0"`
	DonorCount    int    `json:"donor_count" binding:"min=0"`
	Category      string `json:"category" binding:"max=50"`
}

// PreBuildRequest represents a request to generate the draft campaign
type PreBuildRequest struct {
	PatientName string `json:"patient_name" binding:"max=200"`
	Title       string `json:"title" binding:"max=200"`
	Story       string `json:"story" binding:"max=20000"`
}

// SkipRequest records why a scouted record was passed on
type SkipRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdateStatusRequest is the manual status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=scouted pre_built active claimed"`
}

// LogOutreachRequest represents an outreach log entry
type LogOutreachRequest struct {
	Channel        string `json:"channel" binding:"required"`
	Message        string `json:"message" binding:"max=5000"`
	ResponseStatus string `json:"response_status"`
}

// BridgeListFilter represents filter options for the bridge list
type BridgeListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=scouted pre_built active claimed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BridgeResponse represents a bridge record in API responses
type BridgeResponse struct {
	ID            uuid.UUID       `json:"id"`
	Slug          string          `json:"slug"`
	SourceURL     string          `json:"source_url"`
	Title         string          `json:"title"`
	OrganiserName string          `json:"organiser_name"`
	RaisedCents   int64           `json:"raised_cents"`
	Raised        decimal.Decimal `json:"raised"`
	GoalCents     int64           `json:"goal_cents"`
	Goal          decimal.Decimal `json:"goal"`
	DonorCount    int             `json:"donor_count"`
	Category      string          `json:"category"`
	Status        string          `json:"status"`
	CampaignID    *uuid.UUID      `json:"campaign_id,omitempty"`
	ClaimedBy     *uuid.UUID      `json:"claimed_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PreBuildResponse is returned after a draft campaign was generated
type PreBuildResponse struct {
	Bridge       BridgeResponse `json:"bridge"`
	CampaignID   uuid.UUID      `json:"campaign_id"`
	CampaignSlug string         `json:"campaign_slug"`
	LeafCount    int            `json:"leaf_count"`
}

// OutreachResponse represents an outreach entry in API responses
type OutreachResponse struct {
	ID             uuid.UUID  `json:"id"`
	BridgeID       uuid.UUID  `json:"bridge_id"`
	Channel        string     `json:"channel"`
	Message        string     `json:"message"`
	ResponseStatus string     `json:"response_status,omitempty"`
	CreatedBy      *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToBridgeResponse converts a domain BridgeCampaign to BridgeResponse
func ToBridgeResponse(b *bridge.BridgeCampaign) BridgeResponse {
	return BridgeResponse{
		ID:            b.ID,
		Slug:          b.Slug,
		SourceURL:     b.SourceURL,
		Title:         b.Title,
		OrganiserName: b.OrganiserName,
		RaisedCents:   b.RaisedCents,
		Raised:        decimal.New(b.RaisedCents, -2),
		GoalCents:     b.GoalCents,
		Goal:          decimal.New(b.GoalCents, -2),
		DonorCount:    b.DonorCount,
		Category:      b.Category,
		Status:        string(b.Status),
		CampaignID:    b.CampaignID,
		ClaimedBy:     b.ClaimedBy,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// ToOutreachResponse converts a domain Outreach to OutreachResponse
func ToOutreachResponse(o *bridge.Outreach) OutreachResponse {
	return OutreachResponse{
		ID:             o.ID,
		BridgeID:       o.BridgeID,
		Channel:        string(o.Channel),
		Message:        o.Message,
		ResponseStatus: string(o.ResponseStatus),
		CreatedBy:      o.CreatedBy,
		CreatedAt:      o.CreatedAt,
	}
}
