package campaign

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/bridge"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
	"github.com/treeofhope/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type testEnv struct {
	db        *gorm.DB
	svc       *Service
	publisher *recordingPublisher
	campaigns *persistence.GormCampaignRepository
	bridges   *persistence.GormBridgeRepository
	members   *persistence.GormMembershipRepository
}

var testToday = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(persistence.AllModels()...))

	env := &testEnv{
		db:        db,
		publisher: &recordingPublisher{},
		campaigns: persistence.NewGormCampaignRepository(db),
		bridges:   persistence.NewGormBridgeRepository(db),
		members:   persistence.NewGormMembershipRepository(db),
	}
	env.svc = NewService(ServiceConfig{
		Campaigns: env.campaigns,
		Leaves:    persistence.NewGormLeafRepository(db),
		TxScope:   persistence.NewGormTransactionScope(db),
		Publisher: env.publisher,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return testToday },
	})
	return env
}

func (e *testEnv) createCampaign(t *testing.T, title string) *CampaignResponse {
	t.Helper()
	resp, err := e.svc.Create(context.Background(), CreateCampaignRequest{
		Title:       title,
		PatientName: "Sam",
		Story:       "Sam is fighting.",
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) createBridgeCampaign(t *testing.T) (*campaign.Campaign, *bridge.BridgeCampaign) {
	t.Helper()
	ctx := context.Background()
	b, err := bridge.Scout("https://gofundme.com/f/help-alex", bridge.ScoutDetails{Title: "Help Alex"})
	require.NoError(t, err)
	require.NoError(t, e.bridges.Create(ctx, b))

	c, err := campaign.NewCampaignFromBridge(b.ID, "Help Alex", "Alex", "story")
	require.NoError(t, err)
	require.NoError(t, e.campaigns.Create(ctx, c))
	require.NoError(t, b.MarkPreBuilt(c))
	require.NoError(t, e.bridges.Save(ctx, b))
	return c, b
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestService_CreateAssignsUniqueSlugs(t *testing.T) {
	env := newTestEnv(t)

	first := env.createCampaign(t, "Help Sam")
	second := env.createCampaign(t, "Help Sam!")

	assert.Equal(t, "help-sam", first.Slug)
	assert.Equal(t, "help-sam-2", second.Slug)
	assert.Equal(t, "draft", first.Status)
	assert.Zero(t, first.LeafCount)
	assert.Contains(t, env.publisher.types(), campaign.EventTypeCampaignCreated)
}

func TestService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Create(context.Background(), CreateCampaignRequest{Title: "", PatientName: "Sam"})
	requireCode(t, err, shared.CodeValidation)
}

func TestService_ResolveCampaign(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCampaign(t, "Help Sam")
	ctx := context.Background()

	bySlug, err := env.svc.ResolveCampaign(ctx, "Help-Sam")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	byID, err := env.svc.ResolveCampaign(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	_, err = env.svc.ResolveCampaign(ctx, uuid.NewString())
	requireCode(t, err, shared.CodeNotFound)

	_, err = env.svc.ResolveCampaign(ctx, "no-such-slug")
	requireCode(t, err, shared.CodeNotFound)

	_, err = env.svc.ResolveCampaign(ctx, "  ")
	requireCode(t, err, shared.CodeNotFound)
}

func TestService_GetVisibility(t *testing.T) {
	env := newTestEnv(t)
	draft := env.createCampaign(t, "Help Sam")
	ctx := context.Background()

	_, err := env.svc.Get(ctx, draft.Slug, appshared.Anonymous())
	requireCode(t, err, shared.CodeNotFound)

	resp, err := env.svc.Get(ctx, draft.Slug, appshared.Actor{UserID: uuid.New(), Admin: true})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, resp.ID)

	_, err = env.svc.Publish(ctx, draft.ID)
	require.NoError(t, err)
	resp, err = env.svc.Get(ctx, draft.Slug, appshared.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)

	fromBridge, _ := env.createBridgeCampaign(t)
	resp, err = env.svc.Get(ctx, fromBridge.Slug, appshared.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, "draft", resp.Status)
}

func TestService_StatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCampaign(t, "Help Sam")
	ctx := context.Background()

	_, err := env.svc.Pause(ctx, c.ID)
	requireCode(t, err, shared.CodeInvalidState)

	resp, err := env.svc.Publish(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)

	resp, err = env.svc.Pause(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "paused", resp.Status)

	resp, err = env.svc.Resume(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)

	_, err = env.svc.Publish(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_Update(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCampaign(t, "Help Sam")

	story := "A new chapter."
	resp, err := env.svc.Update(context.Background(), c.ID, UpdateCampaignRequest{Story: &story})
	require.NoError(t, err)
	assert.Equal(t, story, resp.Story)
	assert.Equal(t, "Help Sam", resp.Title)
	assert.Equal(t, "help-sam", resp.Slug)
}

func TestService_SubmitLeafPlacesOnSpiral(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCampaign(t, "Help Sam")
	ctx := context.Background()
	_, err := env.svc.Publish(ctx, c.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		leaf, err := env.svc.SubmitLeaf(ctx, c.Slug, SubmitLeafRequest{Message: "Stay strong"}, appshared.Anonymous())
		require.NoError(t, err)
		pos := campaign.SpiralPosition(i)
		assert.Equal(t, pos.X, leaf.PositionX)
		assert.Equal(t, pos.Y, leaf.PositionY)
		assert.Equal(t, campaign.AnonymousAuthor, leaf.AuthorName)
		assert.True(t, leaf.IsPublic)
	}

	stored, err := env.campaigns.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.LeafCount)
	assert.Contains(t, env.publisher.types(), campaign.EventTypeLeafAdded)
}

func TestService_AddLeafConcurrentKeepsCountExact(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCampaign(t, "Help Sam")
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.AddLeaf(ctx, c.ID, "", "Thinking of you", true, LeafSourceSubmit)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := env.campaigns.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, writers, stored.LeafCount)

	var sequences []int
	require.NoError(t, env.db.Model(&campaign.Leaf{}).Where("campaign_id = ?", c.ID).
		Order("sequence").Pluck("sequence", &sequences).Error)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, sequences)
}

func TestService_AddLeafRejections(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCampaign(t, "Help Sam")
	ctx := context.Background()

	_, err := env.svc.AddLeaf(ctx, c.ID, "", "   ", true, LeafSourceSubmit)
	requireCode(t, err, shared.CodeValidation)

	_, err = env.svc.AddLeaf(ctx, uuid.New(), "", "Hello", true, LeafSourceSubmit)
	requireCode(t, err, shared.CodeNotFound)

	_, err = env.svc.Publish(ctx, c.ID)
	require.NoError(t, err)
	_, err = env.svc.Pause(ctx, c.ID)
	require.NoError(t, err)
	_, err = env.svc.AddLeaf(ctx, c.ID, "", "Hello", true, LeafSourceSubmit)
	requireCode(t, err, shared.CodeInvalidState)

	stored, err := env.campaigns.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.LeafCount)
}

func TestService_ListLeavesAndModeration(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCampaign(t, "Help Sam")
	ctx := context.Background()
	admin := appshared.Actor{UserID: uuid.New(), Admin: true}
	_, err := env.svc.Publish(ctx, c.ID)
	require.NoError(t, err)

	private := false
	first, err := env.svc.SubmitLeaf(ctx, c.Slug, SubmitLeafRequest{AuthorName: "Jo", Message: "one"}, appshared.Anonymous())
	require.NoError(t, err)
	_, err = env.svc.SubmitLeaf(ctx, c.Slug, SubmitLeafRequest{Message: "two", IsPublic: &private}, appshared.Anonymous())
	require.NoError(t, err)

	public, err := env.svc.ListLeaves(ctx, c.Slug, LeafListFilter{}, appshared.Anonymous())
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Jo", public[0].AuthorName)

	all, err := env.svc.ListLeaves(ctx, c.Slug, LeafListFilter{}, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hidden, err := env.svc.SetLeafHidden(ctx, first.ID, true)
	require.NoError(t, err)
	assert.True(t, hidden.IsHidden)

	public, err = env.svc.ListLeaves(ctx, c.Slug, LeafListFilter{}, appshared.Anonymous())
	require.NoError(t, err)
	assert.Empty(t, public)

	withHidden, err := env.svc.ListLeaves(ctx, c.Slug, LeafListFilter{IncludeHidden: true}, admin)
	require.NoError(t, err)
	assert.Len(t, withHidden, 2)

	_, err = env.svc.SetLeafHidden(ctx, uuid.New(), true)
	requireCode(t, err, shared.CodeNotFound)
}

func TestService_List(t *testing.T) {
	env := newTestEnv(t)
	env.createCampaign(t, "Help Sam")
	env.createCampaign(t, "Help Jo")
	published := env.createCampaign(t, "Help Kim")
	_, err := env.svc.Publish(context.Background(), published.ID)
	require.NoError(t, err)

	page, err := env.svc.List(context.Background(), CampaignListFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalPages)

	active, err := env.svc.List(context.Background(), CampaignListFilter{Status: "active"})
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, published.ID, active.Items[0].ID)
}

func TestService_ClaimRequiresMatchingUser(t *testing.T) {
	env := newTestEnv(t)
	c, _ := env.createBridgeCampaign(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := env.svc.Claim(ctx, c.Slug, userID, appshared.Anonymous())
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	_, err = env.svc.Claim(ctx, c.Slug, userID, appshared.Actor{UserID: uuid.New()})
	requireCode(t, err, shared.CodeUnauthorized)

	stored, err := env.campaigns.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, stored.SanctuaryClaimed)
}

func TestService_ClaimBridgeCampaign(t *testing.T) {
	env := newTestEnv(t)
	c, b := env.createBridgeCampaign(t)
	ctx := context.Background()
	userID := uuid.New()
	actor := appshared.Actor{UserID: userID, Email: "alex@example.com"}

	resp, err := env.svc.Claim(ctx, c.Slug, userID, actor)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", resp.SanctuaryStartDate)
	assert.Equal(t, string(bridge.StatusClaimed), resp.BridgeStatus)

	stored, err := env.campaigns.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.SanctuaryClaimed)
	require.NotNil(t, stored.SanctuaryClaimedBy)
	assert.Equal(t, userID, *stored.SanctuaryClaimedBy)

	storedBridge, err := env.bridges.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bridge.StatusClaimed, storedBridge.Status)
	require.NotNil(t, storedBridge.ClaimedBy)
	assert.Equal(t, userID, *storedBridge.ClaimedBy)

	members, err := env.members.FindByCampaign(ctx, c.ID, campaign.MembershipRolePatient)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, userID, members[0].UserID)

	types := env.publisher.types()
	assert.Contains(t, types, campaign.EventTypeSanctuaryClaimed)
	assert.Contains(t, types, bridge.EventTypeBridgeStatusChanged)

	// same user again is a no-op, another user is rejected
	_, err = env.svc.Claim(ctx, c.ID.String(), userID, actor)
	require.NoError(t, err)
	members, err = env.members.FindByCampaign(ctx, c.ID, campaign.MembershipRolePatient)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	other := uuid.New()
	_, err = env.svc.Claim(ctx, c.Slug, other, appshared.Actor{UserID: other})
	requireCode(t, err, shared.CodeInvalidState)
}

func TestService_ClaimRecordsClaimantOnClaimedBridge(t *testing.T) {
	env := newTestEnv(t)
	c, b := env.createBridgeCampaign(t)
	ctx := context.Background()

	// a row already at claimed with no claimant recorded
	b.Status = bridge.StatusClaimed
	require.NoError(t, env.bridges.Save(ctx, b))

	userID := uuid.New()
	resp, err := env.svc.Claim(ctx, c.Slug, userID, appshared.Actor{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, string(bridge.StatusClaimed), resp.BridgeStatus)

	stored, err := env.bridges.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ClaimedBy)
	assert.Equal(t, userID, *stored.ClaimedBy)
}

func TestService_ClaimWithMissingBridgePublishesClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := campaign.NewCampaignFromBridge(uuid.New(), "Help Alex", "Alex", "story")
	require.NoError(t, err)
	require.NoError(t, env.campaigns.Create(ctx, c))

	userID := uuid.New()
	resp, err := env.svc.Claim(ctx, c.Slug, userID, appshared.Actor{UserID: userID})
	require.NoError(t, err)
	assert.Empty(t, resp.BridgeStatus)
	assert.Contains(t, env.publisher.types(), campaign.EventTypeSanctuaryClaimed)

	stored, err := env.campaigns.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.SanctuaryClaimed)
}

func TestService_ClaimCampaignWithoutBridge(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCampaign(t, "Help Sam")
	userID := uuid.New()

	resp, err := env.svc.Claim(context.Background(), c.Slug, userID, appshared.Actor{UserID: userID})
	require.NoError(t, err)
	assert.Empty(t, resp.BridgeStatus)
	assert.Equal(t, c.ID, resp.CampaignID)
}

func TestCentsToDollars(t *testing.T) {
	assert.Equal(t, "12.34", CentsToDollars(1234).StringFixed(2))
	assert.Equal(t, "0.05", CentsToDollars(5).StringFixed(2))
}
