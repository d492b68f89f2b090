package campaign

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// CampaignStatus represents the lifecycle status of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft  CampaignStatus = "draft"
	CampaignStatusActive CampaignStatus = "active"
	CampaignStatusPaused CampaignStatus = "paused"
)

// IsValid reports whether s is a known campaign status
func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused:
		return true
	}
	return false
}

// WelcomeLeafAuthor is the author shown on system-seeded leaves
const WelcomeLeafAuthor = "Tree of Hope"

// WelcomeLeafMessages are the encouragement messages seeded on pre-built campaigns.
var WelcomeLeafMessages = [3]string{
	"Every leaf on this tree is someone who believes in you. This is where it begins.",
	"You are not walking this road alone. Your community is gathering around you.",
	"Small, steady kindness adds up. Welcome to your Tree of Hope.",
}

// Campaign is a patient's fundraising page and the aggregate root for its
// leaves and memberships.
type Campaign struct {
	shared.BaseAggregateRoot
	Slug               string         `gorm:"type:varchar(60);not null;uniqueIndex"`
	Title              string         `gorm:"type:varchar(200);not null"`
	PatientName        string         `gorm:"type:varchar(200);not null"`
	Story              string         `gorm:"type:text"`
	Status             CampaignStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	LeafCount          int            `gorm:"not null;default:0"`
	SupporterCount     int            `gorm:"not null;default:0"`
	MonthlyTotalCents  int64          `gorm:"not null;default:0"`
	BridgeID           *uuid.UUID     `gorm:"type:uuid;index"`
	SanctuaryClaimed   bool           `gorm:"not null;default:false"`
	SanctuaryClaimedBy *uuid.UUID     `gorm:"type:uuid;index"`
	SanctuaryStartDate *time.Time     `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (Campaign) TableName() string {
	return "campaigns"
}

// NewCampaign creates a draft campaign with zeroed counters
func NewCampaign(title, patientName, story string) (*Campaign, error) {
	title = strings.TrimSpace(title)
	patientName = strings.TrimSpace(patientName)
	if err := validateCampaignFields(title, patientName, story); err != nil {
		return nil, err
	}

	root := shared.NewBaseAggregateRoot()
	slug := Slugify(title)
	if slug == "" {
		slug = FallbackSlug(root.ID)
	}

	c := &Campaign{
		BaseAggregateRoot: root,
		Slug:              slug,
		Title:             title,
		PatientName:       patientName,
		Story:             strings.TrimSpace(story),
		Status:            CampaignStatusDraft,
	}
	c.AddDomainEvent(NewCampaignCreatedEvent(c))
	return c, nil
}

// NewCampaignFromBridge creates a draft campaign linked to its originating bridge record
func NewCampaignFromBridge(bridgeID uuid.UUID, title, patientName, story string) (*Campaign, error) {
	if bridgeID == uuid.Nil {
		return nil, shared.NewValidationError("Bridge ID is required")
	}
	if strings.TrimSpace(story) == "" {
		return nil, shared.NewValidationError("Story is required")
	}
	c, err := NewCampaign(title, patientName, story)
	if err != nil {
		return nil, err
	}
	c.BridgeID = &bridgeID
	return c, nil
}

// Update replaces the editable text fields. The slug is kept stable.
func (c *Campaign) Update(title, patientName, story string) error {
	title = strings.TrimSpace(title)
	patientName = strings.TrimSpace(patientName)
	if err := validateCampaignFields(title, patientName, story); err != nil {
		return err
	}
	c.Title = title
	c.PatientName = patientName
	c.Story = strings.TrimSpace(story)
	c.Touch()
	return nil
}

// Publish moves a draft campaign to active
func (c *Campaign) Publish() error {
	if c.Status != CampaignStatusDraft {
		return shared.NewInvalidStateError("Only draft campaigns can be published")
	}
	return c.changeStatus(CampaignStatusActive)
}

// Pause moves an active campaign to paused
func (c *Campaign) Pause() error {
	if c.Status != CampaignStatusActive {
		return shared.NewInvalidStateError("Only active campaigns can be paused")
	}
	return c.changeStatus(CampaignStatusPaused)
}

// Resume moves a paused campaign back to active
func (c *Campaign) Resume() error {
	if c.Status != CampaignStatusPaused {
		return shared.NewInvalidStateError("Only paused campaigns can be resumed")
	}
	return c.changeStatus(CampaignStatusActive)
}

func (c *Campaign) changeStatus(to CampaignStatus) error {
	from := c.Status
	c.Status = to
	c.Touch()
	c.AddDomainEvent(NewCampaignStatusChangedEvent(c, from, to))
	return nil
}

// IsPublic reports whether the campaign page is visible to anonymous visitors
func (c *Campaign) IsPublic() bool {
	return c.Status != CampaignStatusDraft
}

// SeedWelcomeLeaves creates the three system leaves at spiral indices 0, 1
// and 2 and sets LeafCount to 3. It is only valid on a campaign without leaves.
func (c *Campaign) SeedWelcomeLeaves() ([]*Leaf, error) {
	if c.LeafCount != 0 {
		return nil, shared.NewInvalidStateError("Welcome leaves can only be seeded on an empty campaign")
	}
	leaves := make([]*Leaf, 0, len(WelcomeLeafMessages))
	for i, msg := range WelcomeLeafMessages {
		leaf, err := NewLeaf(c.ID, i, WelcomeLeafAuthor, msg, true)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leaf)
	}
	c.LeafCount = len(leaves)
	c.Touch()
	return leaves, nil
}

// NewLeaf builds the next leaf for this campaign at index LeafCount.
// The caller persists it and increments the stored counter.
func (c *Campaign) NewLeaf(authorName, message string, isPublic bool) (*Leaf, error) {
	return NewLeaf(c.ID, c.LeafCount, authorName, message, isPublic)
}

// ClaimSanctuary marks the Sanctuary as claimed by userID starting on the
// given day. Claiming again as the same user is a no-op.
func (c *Campaign) ClaimSanctuary(userID uuid.UUID, today time.Time) error {
	if userID == uuid.Nil {
		return shared.NewValidationError("User ID is required")
	}
	if c.SanctuaryClaimed {
		if c.SanctuaryClaimedBy != nil && *c.SanctuaryClaimedBy == userID {
			return nil
		}
		return shared.NewInvalidStateError("Sanctuary has already been claimed")
	}

	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	c.SanctuaryClaimed = true
	c.SanctuaryClaimedBy = &userID
	c.SanctuaryStartDate = &start
	c.Touch()
	c.AddDomainEvent(NewSanctuaryClaimedEvent(c, userID))
	return nil
}

func validateCampaignFields(title, patientName, story string) error {
	if title == "" {
		return shared.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > 200 {
		return shared.NewValidationError("Title cannot exceed 200 characters")
	}
	if patientName == "" {
		return shared.NewValidationError("Patient name is required")
	}
	if utf8.RuneCountInString(patientName) > 200 {
		return shared.NewValidationError("Patient name cannot exceed 200 characters")
	}
	if utf8.RuneCountInString(story) > 20000 {
		return shared.NewValidationError("Story cannot exceed 20000 characters")
	}
	return nil
}
