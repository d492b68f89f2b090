// Package bridge models the pipeline that converts external fundraisers into
// Tree of Hope campaigns: scouted, pre-built, active and claimed.
package bridge

import (
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// Status is the pipeline stage of a bridge record
type Status string

const (
	StatusScouted  Status = "scouted"
	StatusPreBuilt Status = "pre_built"
	StatusActive   Status = "active"
	StatusClaimed  Status = "claimed"
)

var statusRank = map[Status]int{
	StatusScouted:  0,
	StatusPreBuilt: 1,
	StatusActive:   2,
	StatusClaimed:  3,
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// HasCampaign reports whether a record in this status must reference a campaign
func (s Status) HasCampaign() bool {
	return statusRank[s] >= statusRank[StatusPreBuilt]
}

// BridgeCampaign tracks an external fundraiser on its way to becoming a campaign.
// CampaignID is set exactly when the status is pre_built or later.
type BridgeCampaign struct {
	shared.BaseAggregateRoot
	Slug          string     `gorm:"type:varchar(60);not null;index"`
	SourceURL     string     `gorm:"type:text;not null"`
	Title         string     `gorm:"type:varchar(200)"`
	OrganiserName string     `gorm:"type:varchar(200)"`
	RaisedCents   int64      `gorm:"not null;default:0"`
	GoalCents     int64      `gorm:"not null;default:0"`
	DonorCount    int        `gorm:"not null;default:0"`
	Category      string     `gorm:"type:varchar(50)"`
	Status        Status     `gorm:"type:varchar(20);not null;default:'scouted';index"`
	CampaignID    *uuid.UUID `gorm:"type:uuid;index"`
	ClaimedBy     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BridgeCampaign) TableName() string {
	return "bridge_campaigns"
}

// ScoutDetails carries the optional metadata recorded at scout time
type ScoutDetails struct {
	Title         string
	OrganiserName string
	RaisedCents   int64
	GoalCents     int64
	DonorCount    int
	Category      string
}

// Scout creates a bridge record in status scouted. The source URL is required.
func Scout(sourceURL string, details ScoutDetails) (*BridgeCampaign, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, shared.NewValidationError("Source URL is required")
	}
	u, err := url.ParseRequestURI(sourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, shared.NewValidationError("Source URL must be an absolute http(s) URL")
	}
	if details.RaisedCents < 0 || details.GoalCents < 0 || details.DonorCount < 0 {
		return nil, shared.NewValidationError("Amounts and donor count cannot be negative")
	}

	title := strings.TrimSpace(details.Title)
	slug := campaign.Slugify(title)
	if slug == "" {
		slug = campaign.Slugify(strings.ReplaceAll(path.Base(u.Path), "-", " "))
	}
	if slug == "" {
		slug = campaign.Slugify(u.Host)
	}

	b := &BridgeCampaign{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              slug,
		SourceURL:         sourceURL,
		Title:             title,
		OrganiserName:     strings.TrimSpace(details.OrganiserName),
		RaisedCents:       details.RaisedCents,
		GoalCents:         details.GoalCents,
		DonorCount:        details.DonorCount,
		Category:          strings.TrimSpace(details.Category),
		Status:            StatusScouted,
	}
	b.AddDomainEvent(NewBridgeScoutedEvent(b))
	return b, nil
}

// MarkPreBuilt links the generated campaign and moves scouted to pre_built
func (b *BridgeCampaign) MarkPreBuilt(c *campaign.Campaign) error {
	if b.Status != StatusScouted {
		return shared.NewInvalidStateError("Only scouted bridge campaigns can be pre-built")
	}
	if c == nil || c.ID == uuid.Nil {
		return shared.NewValidationError("Campaign is required")
	}
	id := c.ID
	b.CampaignID = &id
	b.setStatus(StatusPreBuilt)
	b.AddDomainEvent(NewBridgePreBuiltEvent(b, c))
	return nil
}

// MarkActive moves pre_built to active once the first supporter has checked out.
// Returns false when the record was not in pre_built.
func (b *BridgeCampaign) MarkActive() bool {
	if b.Status != StatusPreBuilt {
		return false
	}
	b.setStatus(StatusActive)
	b.AddDomainEvent(NewBridgeStatusChangedEvent(b, StatusPreBuilt, StatusActive))
	return true
}

// MarkClaimed records the organiser who claimed the campaign
func (b *BridgeCampaign) MarkClaimed(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewValidationError("User ID is required")
	}
	if b.Status == StatusClaimed && b.ClaimedBy == nil {
		b.ClaimedBy = &userID
		b.Touch()
		return nil
	}
	if b.Status != StatusPreBuilt && b.Status != StatusActive {
		return shared.NewInvalidStateError("Only pre-built or active bridge campaigns can be claimed")
	}
	from := b.Status
	b.ClaimedBy = &userID
	b.setStatus(StatusClaimed)
	b.AddDomainEvent(NewBridgeStatusChangedEvent(b, from, StatusClaimed))
	return nil
}

// Skip leaves a scouted record where it is and records the decision
func (b *BridgeCampaign) Skip(reason string) error {
	if b.Status != StatusScouted {
		return shared.NewInvalidStateError("Only scouted bridge campaigns can be skipped")
	}
	b.AddDomainEvent(NewBridgeSkippedEvent(b, strings.TrimSpace(reason)))
	return nil
}

// AdvanceTo is the manual operator transition. Moves are forward only, a
// record without a campaign cannot leave scouted this way and claimed is
// reached only through MarkClaimed.
func (b *BridgeCampaign) AdvanceTo(to Status) error {
	if !to.IsValid() {
		return shared.NewValidationError("Invalid bridge status")
	}
	if to == StatusClaimed {
		return shared.NewInvalidStateError("Bridge campaigns become claimed when the organiser claims the Sanctuary")
	}
	if statusRank[to] <= statusRank[b.Status] {
		return shared.NewInvalidStateError("Bridge status can only move forward")
	}
	if to.HasCampaign() && b.CampaignID == nil {
		return shared.NewInvalidStateError("Bridge campaign must be pre-built before it can advance")
	}
	from := b.Status
	b.setStatus(to)
	b.AddDomainEvent(NewBridgeStatusChangedEvent(b, from, to))
	return nil
}

func (b *BridgeCampaign) setStatus(s Status) {
	b.Status = s
	b.Touch()
}
