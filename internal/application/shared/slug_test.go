package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// mockCampaignCreator mocks only Create; other methods panic if called
type mockCampaignCreator struct {
	campaign.CampaignRepository
	mock.Mock
	slugs []string
}

func (m *mockCampaignCreator) Create(ctx context.Context, c *campaign.Campaign) error {
	m.slugs = append(m.slugs, c.Slug)
	args := m.Called(ctx, c.Slug)
	return args.Error(0)
}

func newDraft(t *testing.T) *campaign.Campaign {
	t.Helper()
	c, err := campaign.NewCampaign("Help Sam", "Sam", "story")
	require.NoError(t, err)
	return c
}

func TestCreateCampaignWithUniqueSlug_FirstTry(t *testing.T) {
	repo := &mockCampaignCreator{}
	repo.On("Create", mock.Anything, "help-sam").Return(nil)

	c := newDraft(t)
	require.NoError(t, CreateCampaignWithUniqueSlug(context.Background(), repo, c))
	assert.Equal(t, "help-sam", c.Slug)
	repo.AssertExpectations(t)
}

func TestCreateCampaignWithUniqueSlug_Suffixes(t *testing.T) {
	repo := &mockCampaignCreator{}
	repo.On("Create", mock.Anything, "help-sam").Return(shared.ErrAlreadyExists)
	repo.On("Create", mock.Anything, "help-sam-2").Return(shared.ErrAlreadyExists)
	repo.On("Create", mock.Anything, "help-sam-3").Return(nil)

	c := newDraft(t)
	require.NoError(t, CreateCampaignWithUniqueSlug(context.Background(), repo, c))
	assert.Equal(t, "help-sam-3", c.Slug)
	assert.Equal(t, []string{"help-sam", "help-sam-2", "help-sam-3"}, repo.slugs)
}

func TestCreateCampaignWithUniqueSlug_GivesUp(t *testing.T) {
	repo := &mockCampaignCreator{}
	repo.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

	c := newDraft(t)
	err := CreateCampaignWithUniqueSlug(context.Background(), repo, c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	assert.Len(t, repo.slugs, MaxSlugAttempts)
	assert.Equal(t, "help-sam-20", repo.slugs[MaxSlugAttempts-1])
	assert.Equal(t, "help-sam", c.Slug)
}

func TestCreateCampaignWithUniqueSlug_OtherError(t *testing.T) {
	repo := &mockCampaignCreator{}
	boom := errors.New("connection reset")
	repo.On("Create", mock.Anything, "help-sam").Return(boom)

	err := CreateCampaignWithUniqueSlug(context.Background(), repo, newDraft(t))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, repo.slugs, 1)
}

func TestActor(t *testing.T) {
	anon := Anonymous()
	assert.False(t, anon.IsAuthenticated())
	assert.Nil(t, anon.UserIDPtr())

	c := newDraft(t)
	a := Actor{UserID: c.ID}
	assert.True(t, a.IsAuthenticated())
	require.NotNil(t, a.UserIDPtr())
	assert.Equal(t, c.ID, *a.UserIDPtr())
}
