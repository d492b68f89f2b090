package campaign

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treeofhope/backend/internal/domain/shared"
)

func TestNewLeaf(t *testing.T) {
	campaignID := uuid.New()

	t.Run("blank author becomes Anonymous", func(t *testing.T) {
		leaf, err := NewLeaf(campaignID, 0, "  ", "Thinking of you", true)
		require.NoError(t, err)
		assert.Equal(t, AnonymousAuthor, leaf.AuthorName)
		assert.False(t, leaf.IsHidden)
	})

	t.Run("position follows the index", func(t *testing.T) {
		leaf, err := NewLeaf(campaignID, 2, "Ana", "Stay strong", false)
		require.NoError(t, err)
		assert.Equal(t, SpiralPosition(2), leaf.Position())
		assert.Equal(t, 2, leaf.Sequence)
		assert.False(t, leaf.IsPublic)
	})

	t.Run("message is required", func(t *testing.T) {
		_, err := NewLeaf(campaignID, 0, "Ana", " ", true)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("message length is bounded", func(t *testing.T) {
		_, err := NewLeaf(campaignID, 0, "Ana", strings.Repeat("x", MaxLeafMessageLength+1), true)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("campaign is required", func(t *testing.T) {
		_, err := NewLeaf(uuid.Nil, 0, "Ana", "hi", true)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestLeafSetHidden(t *testing.T) {
	leaf, err := NewLeaf(uuid.New(), 0, "Ana", "hi", true)
	require.NoError(t, err)

	leaf.SetHidden(true)
	assert.True(t, leaf.IsHidden)
	leaf.SetHidden(false)
	assert.False(t, leaf.IsHidden)
}

func TestNewMembership(t *testing.T) {
	m, err := NewMembership(uuid.New(), uuid.New(), MembershipRoleSupporter)
	require.NoError(t, err)
	assert.Equal(t, MembershipRoleSupporter, m.Role)

	_, err = NewMembership(uuid.New(), uuid.New(), MembershipRole("owner"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewMembership(uuid.New(), uuid.Nil, MembershipRolePatient)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
