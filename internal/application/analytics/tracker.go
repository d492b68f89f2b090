// Package analytics records product analytics events. Recording never fails
// the operation that triggered it.
package analytics

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/domain/analytics"
	"go.uber.org/zap"
)

// Event is one analytics record to store
type Event struct {
	Name       string
	CampaignID *uuid.UUID
	UserID     *uuid.UUID
	SessionID  string
	Properties map[string]any
}

// Tracker persists analytics events
type Tracker struct {
	repo   analytics.Repository
	logger *zap.Logger
}

// NewTracker creates a new Tracker
func NewTracker(repo analytics.Repository, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{repo: repo, logger: logger}
}

// Track stores e. Failures are logged at warn and swallowed, and the write is
// not cancelled with the caller's context.
func (t *Tracker) Track(ctx context.Context, e Event) {
	if err := t.record(context.WithoutCancel(ctx), e); err != nil {
		t.logger.Warn("Failed to record analytics event",
			zap.String("event_name", e.Name),
			zap.Error(err))
	}
}

// RecordClientEvent stores an event sent by the web client. Invalid names are
// reported to the caller; storage failures are not.
func (t *Tracker) RecordClientEvent(ctx context.Context, req TrackEventRequest, userID *uuid.UUID) error {
	name := strings.TrimSpace(req.EventName)
	if _, err := analytics.NewEvent(name, nil, nil, "", nil); err != nil {
		return err
	}
	t.Track(ctx, Event{
		Name:       name,
		CampaignID: req.CampaignID,
		UserID:     userID,
		SessionID:  req.SessionID,
		Properties: req.Properties,
	})
	return nil
}

func (t *Tracker) record(ctx context.Context, e Event) error {
	event, err := analytics.NewEvent(e.Name, e.CampaignID, e.UserID, e.SessionID, e.Properties)
	if err != nil {
		return err
	}
	return t.repo.Create(ctx, event)
}

// TrackEventRequest is the public analytics endpoint payload
type TrackEventRequest struct {
	EventName  string         `json:"event_name" binding:"required,max=100"`
	CampaignID *uuid.UUID     `json:"campaign_id"`
	SessionID  string         `json:"session_id" binding:"max=100"`
	Properties map[string]any `json:"properties"`
}
