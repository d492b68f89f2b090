package campaign

import (
	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// MembershipRole is a user's relationship to a campaign
type MembershipRole string

const (
	MembershipRoleSupporter MembershipRole = "supporter"
	MembershipRolePatient   MembershipRole = "patient"
)

// IsValid reports whether r is a known role
func (r MembershipRole) IsValid() bool {
	return r == MembershipRoleSupporter || r == MembershipRolePatient
}

// Membership links a user to a campaign with a role. Rows are never mutated.
type Membership struct {
	shared.BaseEntity
	CampaignID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_campaign_user_role,priority:1"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_campaign_user_role,priority:2;index"`
	Role       MembershipRole `gorm:"type:varchar(20);not null;uniqueIndex:idx_membership_campaign_user_role,priority:3"`
}

// TableName returns the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}

// NewMembership creates a membership row
func NewMembership(campaignID, userID uuid.UUID, role MembershipRole) (*Membership, error) {
	if campaignID == uuid.Nil {
		return nil, shared.NewValidationError("Campaign ID is required")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("User ID is required")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("Invalid membership role")
	}
	return &Membership{
		BaseEntity: shared.NewBaseEntity(),
		CampaignID: campaignID,
		UserID:     userID,
		Role:       role,
	}, nil
}
