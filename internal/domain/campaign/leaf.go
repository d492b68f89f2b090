package campaign

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// AnonymousAuthor is used when a leaf is submitted without an author name
const AnonymousAuthor = "Anonymous"

// Field limits for leaves
const (
	MaxLeafMessageLength = 500
	MaxLeafAuthorLength  = 100
)

// Leaf is a supporter's message attached to a campaign.
// Its position is fixed at insertion time from the campaign's leaf count.
type Leaf struct {
	shared.BaseEntity
	CampaignID uuid.UUID `gorm:"type:uuid;not null;index"`
	Sequence   int       `gorm:"not null"` // placement index within the campaign
	AuthorName string    `gorm:"type:varchar(100);not null"`
	Message    string    `gorm:"type:text;not null"`
	PositionX  int       `gorm:"not null"`
	PositionY  int       `gorm:"not null"`
	IsPublic   bool      `gorm:"not null"`
	IsHidden   bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Leaf) TableName() string {
	return "leaves"
}

// NewLeaf creates a leaf placed at the spiral position for index
func NewLeaf(campaignID uuid.UUID, index int, authorName, message string, isPublic bool) (*Leaf, error) {
	if campaignID == uuid.Nil {
		return nil, shared.NewValidationError("Campaign ID is required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, shared.NewValidationError("Message is required")
	}
	if utf8.RuneCountInString(message) > MaxLeafMessageLength {
		return nil, shared.NewValidationError("Message cannot exceed 500 characters")
	}
	authorName = strings.TrimSpace(authorName)
	if authorName == "" {
		authorName = AnonymousAuthor
	}
	if utf8.RuneCountInString(authorName) > MaxLeafAuthorLength {
		return nil, shared.NewValidationError("Author name cannot exceed 100 characters")
	}

	if index < 0 {
		index = 0
	}
	pos := SpiralPosition(index)
	return &Leaf{
		BaseEntity: shared.NewBaseEntity(),
		CampaignID: campaignID,
		Sequence:   index,
		AuthorName: authorName,
		Message:    message,
		PositionX:  pos.X,
		PositionY:  pos.Y,
		IsPublic:   isPublic,
	}, nil
}

// Position returns the leaf's canvas position
func (l *Leaf) Position() Position {
	return Position{X: l.PositionX, Y: l.PositionY}
}

// SetHidden toggles the moderation flag
func (l *Leaf) SetHidden(hidden bool) {
	l.IsHidden = hidden
	l.Touch()
}
