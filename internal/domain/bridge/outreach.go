package bridge

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// Channel is how an organiser was contacted
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelPhone   Channel = "phone"
	ChannelSMS     Channel = "sms"
	ChannelMessage Channel = "message"
	ChannelMeeting Channel = "meeting"
)

// IsValid reports whether c is a known channel
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelPhone, ChannelSMS, ChannelMessage, ChannelMeeting:
		return true
	}
	return false
}

// ResponseStatus records how the organiser responded, if at all
type ResponseStatus string

const (
	ResponseNone       ResponseStatus = ""
	ResponseNoResponse ResponseStatus = "no_response"
	ResponseReplied    ResponseStatus = "replied"
	ResponseInterested ResponseStatus = "interested"
	ResponseDeclined   ResponseStatus = "declined"
)

// IsValid reports whether r is a known response status
func (r ResponseStatus) IsValid() bool {
	switch r {
	case ResponseNone, ResponseNoResponse, ResponseReplied, ResponseInterested, ResponseDeclined:
		return true
	}
	return false
}

// Outreach is an append-only log entry of a contact attempt
type Outreach struct {
	shared.BaseEntity
	BridgeID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Channel        Channel        `gorm:"type:varchar(20);not null"`
	Message        string         `gorm:"type:text"`
	ResponseStatus ResponseStatus `gorm:"type:varchar(20)"`
	CreatedBy      *uuid.UUID     `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Outreach) TableName() string {
	return "bridge_outreach"
}

// NewOutreach creates an outreach log entry
func NewOutreach(bridgeID uuid.UUID, channel Channel, message string, response ResponseStatus, createdBy *uuid.UUID) (*Outreach, error) {
	if bridgeID == uuid.Nil {
		return nil, shared.NewValidationError("Bridge ID is required")
	}
	if !channel.IsValid() {
		return nil, shared.NewValidationError("Channel must be one of email, phone, sms, message, meeting")
	}
	if !response.IsValid() {
		return nil, shared.NewValidationError("Invalid response status")
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > 5000 {
		return nil, shared.NewValidationError("Message cannot exceed 5000 characters")
	}
	return &Outreach{
		BaseEntity:     shared.NewBaseEntity(),
		BridgeID:       bridgeID,
		Channel:        channel,
		Message:        message,
		ResponseStatus: response,
		CreatedBy:      createdBy,
	}, nil
}
