package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/treeofhope/backend/internal/domain/analytics"
	"github.com/treeofhope/backend/internal/domain/billing"
	"github.com/treeofhope/backend/internal/domain/bridge"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockAnalyticsRepository is a mock implementation of analytics.Repository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Create(ctx context.Context, e *analytics.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) CountByName(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func TestTracker_Track(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	campaignID := uuid.New()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *analytics.Event) bool {
		return e.EventName == analytics.EventCheckoutStarted &&
			e.CampaignID != nil && *e.CampaignID == campaignID &&
			e.Properties["tier"] == "seed"
	})).Return(nil)

	tracker := NewTracker(repo, zap.NewNop())
	tracker.Track(context.Background(), Event{
		Name:       analytics.EventCheckoutStarted,
		CampaignID: &campaignID,
		Properties: map[string]any{"tier": "seed"},
	})

	repo.AssertExpectations(t)
}

func TestTracker_TrackSwallowsErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := new(MockAnalyticsRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	tracker := NewTracker(repo, zap.New(core))
	tracker.Track(context.Background(), Event{Name: "page_view"})
	tracker.Track(context.Background(), Event{Name: ""})

	assert.Equal(t, 2, logs.FilterMessage("Failed to record analytics event").Len())
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestTracker_TrackIgnoresCancelledContext(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	repo.On("Create", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewTracker(repo, nil).Track(ctx, Event{Name: "page_view"})
	repo.AssertExpectations(t)
}

func TestTracker_RecordClientEvent(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	tracker := NewTracker(repo, nil)
	userID := uuid.New()

	err := tracker.RecordClientEvent(context.Background(), TrackEventRequest{EventName: "tree_viewed", SessionID: "s1"}, &userID)
	assert.NoError(t, err)

	err = tracker.RecordClientEvent(context.Background(), TrackEventRequest{EventName: "   "}, nil)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeValidation, domainErr.Code)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestDomainEventRecorder_EventMapping(t *testing.T) {
	c, err := campaign.NewCampaign("Help Sam", "Sam", "story")
	require.NoError(t, err)
	b, err := bridge.Scout("https://gofundme.com/f/help-sam", bridge.ScoutDetails{Title: "Help Sam"})
	require.NoError(t, err)
	require.NoError(t, b.MarkPreBuilt(c))
	commitment, err := billing.NewCommitment(c.ID, uuid.New(), "sub_1", "cus_1", "seed", 1500)
	require.NoError(t, err)

	tests := []struct {
		event shared.DomainEvent
		name  string
	}{
		{campaign.NewCampaignCreatedEvent(c), analytics.EventCampaignCreated},
		{campaign.NewSanctuaryClaimedEvent(c, uuid.New()), analytics.EventSanctuaryClaimed},
		{bridge.NewBridgeScoutedEvent(b), analytics.EventBridgeScouted},
		{bridge.NewBridgePreBuiltEvent(b, c), analytics.EventBridgePreBuilt},
		{bridge.NewBridgeSkippedEvent(b, "no contact"), analytics.EventBridgeSkipped},
		{bridge.NewBridgeStatusChangedEvent(b, bridge.StatusPreBuilt, bridge.StatusActive), analytics.EventBridgeStatus},
		{billing.NewCommitmentCreatedEvent(commitment), analytics.EventCheckoutSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAnalyticsRepository)
			repo.On("Create", mock.Anything, mock.MatchedBy(func(e *analytics.Event) bool {
				return e.EventName == tt.name
			})).Return(nil)

			recorder := NewDomainEventRecorder(NewTracker(repo, nil))
			assert.Contains(t, recorder.EventTypes(), tt.event.EventType())
			require.NoError(t, recorder.Handle(context.Background(), tt.event))
			repo.AssertExpectations(t)
		})
	}
}

func TestDomainEventRecorder_CheckoutSucceededProperties(t *testing.T) {
	campaignID, userID := uuid.New(), uuid.New()
	commitment, err := billing.NewCommitment(campaignID, userID, "sub_1", "cus_1", "seed", 1500)
	require.NoError(t, err)

	e, ok := toAnalyticsEvent(billing.NewCommitmentCreatedEvent(commitment))
	require.True(t, ok)
	assert.Equal(t, campaignID, *e.CampaignID)
	assert.Equal(t, userID, *e.UserID)
	assert.Equal(t, int64(1500), e.Properties["monthly_amount_cents"])
	assert.Equal(t, "seed", e.Properties["tier"])
}

type unknownEvent struct {
	shared.BaseDomainEvent
}

func TestDomainEventRecorder_IgnoresUnknownEvents(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	recorder := NewDomainEventRecorder(NewTracker(repo, nil))

	event := &unknownEvent{BaseDomainEvent: shared.NewBaseDomainEvent("Other", "Other", uuid.New())}
	assert.NoError(t, recorder.Handle(context.Background(), event))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
