package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
)

func TestGormTransactionScope_Commit(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	c := newTestCampaign(t, "Help Maria")
	err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		leaves, err := c.SeedWelcomeLeaves()
		if err != nil {
			return err
		}
		if err := repos.Campaigns().Create(ctx, c); err != nil {
			return err
		}
		return repos.Leaves().CreateBatch(ctx, leaves)
	})
	require.NoError(t, err)

	n, err := NewGormLeafRepository(db).CountByCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGormTransactionScope_Rollback(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	c := newTestCampaign(t, "Help Maria")
	boom := errors.New("boom")
	err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := repos.Campaigns().Create(ctx, c); err != nil {
			return err
		}
		leaf, err := campaign.NewLeaf(c.ID, 0, "Ana", "hi", true)
		if err != nil {
			return err
		}
		if err := repos.Leaves().Create(ctx, leaf); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormCampaignRepository(db).FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	n, err := NewGormLeafRepository(db).CountByCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormTransactionScope_SlugConflictKeepsTransactionUsable(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	require.NoError(t, NewGormCampaignRepository(db).Create(ctx, newTestCampaign(t, "Help Maria")))

	second := newTestCampaign(t, "Help Maria")
	err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		err := repos.Campaigns().Create(ctx, second)
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		second.Slug = campaign.SlugWithSuffix(second.Slug, 2)
		return repos.Campaigns().Create(ctx, second)
	})
	require.NoError(t, err)

	found, err := NewGormCampaignRepository(db).FindBySlug(ctx, "help-maria-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)
}
