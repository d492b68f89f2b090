package shared

import (
	"context"
	"errors"

	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
)

// MaxSlugAttempts bounds the suffixes tried when a campaign slug is taken:
// the derived slug first, then -2 through -20.
const MaxSlugAttempts = 20

// CreateCampaignWithUniqueSlug inserts c, appending -2, -3, ... to its slug
// while the repository reports a slug conflict. The repository must resolve
// conflicts without failing the surrounding transaction.
func CreateCampaignWithUniqueSlug(ctx context.Context, repo campaign.CampaignRepository, c *campaign.Campaign) error {
	base := c.Slug
	for n := 1; n <= MaxSlugAttempts; n++ {
		if n > 1 {
			c.Slug = campaign.SlugWithSuffix(base, n)
		}
		err := repo.Create(ctx, c)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
	}
	c.Slug = base
	return shared.NewDomainError(shared.CodeAlreadyExists, "Could not find a free slug for this title")
}
