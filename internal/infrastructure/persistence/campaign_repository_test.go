package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
)

func newTestCampaign(t *testing.T, title string) *campaign.Campaign {
	t.Helper()
	c, err := campaign.NewCampaign(title, "Maria", "A story")
	require.NoError(t, err)
	return c
}

func TestGormCampaignRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCampaignRepository(db)
	ctx := context.Background()

	c := newTestCampaign(t, "Help Maria Heal")
	require.NoError(t, repo.Create(ctx, c))

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "help-maria-heal", found.Slug)
		assert.Equal(t, campaign.CampaignStatusDraft, found.Status)
	})

	t.Run("by slug", func(t *testing.T) {
		found, err := repo.FindBySlug(ctx, "help-maria-heal")
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
	})

	t.Run("for update", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
	})

	t.Run("missing returns ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindBySlug(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("slug existence", func(t *testing.T) {
		exists, err := repo.ExistsBySlug(ctx, "help-maria-heal")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = repo.ExistsBySlug(ctx, "help-maria-heal-2")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormCampaignRepository_Create_SlugConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCampaignRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestCampaign(t, "Help Maria")))
	err := repo.Create(ctx, newTestCampaign(t, "Help Maria"))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	var count int64
	require.NoError(t, db.Model(&campaign.Campaign{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormCampaignRepository_SaveLeavesCountersAlone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCampaignRepository(db)
	ctx := context.Background()

	c := newTestCampaign(t, "Help Maria")
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.IncrementLeafCount(ctx, c.ID, 2))

	// c still holds the stale in-memory count of zero
	require.NoError(t, c.Publish())
	userID := uuid.New()
	require.NoError(t, c.ClaimSanctuary(userID, time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.LeafCount)
	assert.Equal(t, campaign.CampaignStatusActive, found.Status)
	assert.True(t, found.SanctuaryClaimed)
	require.NotNil(t, found.SanctuaryClaimedBy)
	assert.Equal(t, userID, *found.SanctuaryClaimedBy)
	require.NotNil(t, found.SanctuaryStartDate)
	assert.Equal(t, 4, found.SanctuaryStartDate.Day())
}

func TestGormCampaignRepository_Save_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCampaignRepository(db)

	err := repo.Save(context.Background(), newTestCampaign(t, "Never Stored"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCampaignRepository_Increments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCampaignRepository(db)
	ctx := context.Background()

	c := newTestCampaign(t, "Help Maria")
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, repo.IncrementLeafCount(ctx, c.ID, 1))
	require.NoError(t, repo.IncrementLeafCount(ctx, c.ID, 3))
	require.NoError(t, repo.IncrementSupportTotals(ctx, c.ID, 1, 2500))
	require.NoError(t, repo.IncrementSupportTotals(ctx, c.ID, 1, 1000))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, found.LeafCount)
	assert.Equal(t, 2, found.SupporterCount)
	assert.Equal(t, int64(3500), found.MonthlyTotalCents)

	assert.ErrorIs(t, repo.IncrementLeafCount(ctx, uuid.New(), 1), shared.ErrNotFound)
}

func TestGormCampaignRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCampaignRepository(db)
	ctx := context.Background()

	for _, title := range []string{"Alpha Fund", "Beta Fund", "Gamma Appeal"} {
		c := newTestCampaign(t, title)
		if title != "Gamma Appeal" {
			require.NoError(t, c.Publish())
		}
		require.NoError(t, repo.Create(ctx, c))
	}

	t.Run("status filter", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, campaign.CampaignFilter{Status: campaign.CampaignStatusActive})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})

	t.Run("search", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, campaign.CampaignFilter{Filter: shared.Filter{Search: "APPEAL"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "gamma-appeal", items[0].Slug)
	})

	t.Run("paging keeps total", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, campaign.CampaignFilter{Filter: shared.Filter{
			Page: 2, PageSize: 2, OrderBy: "title", OrderDir: "asc",
		}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 1)
		assert.Equal(t, "Gamma Appeal", items[0].Title)
	})
}
