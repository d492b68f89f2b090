// Package campaign implements campaign administration, public campaign pages,
// leaf submission and the Sanctuary claim.
package campaign

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/bridge"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
	"github.com/treeofhope/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Leaf sources recorded on LeafAdded events and metrics
const (
	LeafSourceSubmit   = "submit"
	LeafSourceActivate = "activate"
)

// Service handles campaign and leaf operations
type Service struct {
	campaigns campaign.CampaignRepository
	leaves    campaign.LeafRepository
	txScope   appshared.TransactionScope
	publisher shared.EventPublisher
	metrics   *telemetry.DonationMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// ServiceConfig contains the dependencies of Service
type ServiceConfig struct {
	Campaigns campaign.CampaignRepository
	Leaves    campaign.LeafRepository
	TxScope   appshared.TransactionScope
	Publisher shared.EventPublisher
	Metrics   *telemetry.DonationMetrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewService creates a new campaign Service
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		campaigns: cfg.Campaigns,
		leaves:    cfg.Leaves,
		txScope:   cfg.TxScope,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
}

// ResolveCampaign looks a campaign up by ID when ref is a UUID and by slug otherwise
func (s *Service) ResolveCampaign(ctx context.Context, ref string) (*campaign.Campaign, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, shared.NewNotFoundError("Campaign")
	}
	var (
		c   *campaign.Campaign
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		c, err = s.campaigns.FindByID(ctx, id)
	} else {
		c, err = s.campaigns.FindBySlug(ctx, strings.ToLower(ref))
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Campaign")
	}
	return c, err
}

// ResolveVisible resolves ref and hides draft campaigns from non-admins.
// Drafts generated from a bridge record stay reachable because their page is
// the bridge landing page.
func (s *Service) ResolveVisible(ctx context.Context, ref string, actor appshared.Actor) (*campaign.Campaign, error) {
	c, err := s.ResolveCampaign(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !canView(c, actor) {
		return nil, shared.NewNotFoundError("Campaign")
	}
	return c, nil
}

func canView(c *campaign.Campaign, actor appshared.Actor) bool {
	return actor.Admin || c.IsPublic() || c.BridgeID != nil
}

// Create creates a draft campaign
func (s *Service) Create(ctx context.Context, req CreateCampaignRequest) (*CampaignResponse, error) {
	c, err := campaign.NewCampaign(req.Title, req.PatientName, req.Story)
	if err != nil {
		return nil, err
	}
	if err := appshared.CreateCampaignWithUniqueSlug(ctx, s.campaigns, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c.PullDomainEvents()...)

	s.logger.Info("Campaign created",
		zap.String("campaign_id", c.ID.String()),
		zap.String("slug", c.Slug))

	resp := ToCampaignResponse(c)
	return &resp, nil
}

// Get returns the campaign page for ref
func (s *Service) Get(ctx context.Context, ref string, actor appshared.Actor) (*CampaignResponse, error) {
	c, err := s.ResolveVisible(ctx, ref, actor)
	if err != nil {
		return nil, err
	}
	resp := ToCampaignResponse(c)
	return &resp, nil
}

// List lists campaigns for the admin console
func (s *Service) List(ctx context.Context, filter CampaignListFilter) (shared.Paginated[CampaignResponse], error) {
	domainFilter := campaign.CampaignFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		Status: campaign.CampaignStatus(filter.Status),
	}

	campaigns, total, err := s.campaigns.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[CampaignResponse]{}, err
	}

	items := make([]CampaignResponse, len(campaigns))
	for i := range campaigns {
		items[i] = ToCampaignResponse(&campaigns[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Update edits a campaign's text fields
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateCampaignRequest) (*CampaignResponse, error) {
	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title, patientName, story := c.Title, c.PatientName, c.Story
	if req.Title != nil {
		title = *req.Title
	}
	if req.PatientName != nil {
		patientName = *req.PatientName
	}
	if req.Story != nil {
		story = *req.Story
	}
	if err := c.Update(title, patientName, story); err != nil {
		return nil, err
	}
	if err := s.campaigns.Save(ctx, c); err != nil {
		return nil, err
	}

	resp := ToCampaignResponse(c)
	return &resp, nil
}

// Publish moves a draft campaign to active
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	return s.changeStatus(ctx, id, (*campaign.Campaign).Publish)
}

// Pause moves an active campaign to paused
func (s *Service) Pause(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	return s.changeStatus(ctx, id, (*campaign.Campaign).Pause)
}

// Resume moves a paused campaign back to active
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	return s.changeStatus(ctx, id, (*campaign.Campaign).Resume)
}

func (s *Service) changeStatus(ctx context.Context, id uuid.UUID, transition func(*campaign.Campaign) error) (*CampaignResponse, error) {
	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(c); err != nil {
		return nil, err
	}
	if err := s.campaigns.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c.PullDomainEvents()...)

	resp := ToCampaignResponse(c)
	return &resp, nil
}

// SubmitLeaf adds a leaf to a campaign without a payment
func (s *Service) SubmitLeaf(ctx context.Context, ref string, req SubmitLeafRequest, actor appshared.Actor) (*LeafResponse, error) {
	c, err := s.ResolveVisible(ctx, ref, actor)
	if err != nil {
		return nil, err
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	leaf, err := s.AddLeaf(ctx, c.ID, req.AuthorName, req.Message, isPublic, LeafSourceSubmit)
	if err != nil {
		return nil, err
	}
	resp := ToLeafResponse(leaf)
	return &resp, nil
}

// AddLeaf inserts a leaf at the campaign's next spiral index. The campaign
// row is locked for the insert and leaf_count is incremented in the same
// transaction, so concurrent leaves get distinct indices. Paused campaigns
// do not accept leaves.
func (s *Service) AddLeaf(ctx context.Context, campaignID uuid.UUID, authorName, message string, isPublic bool, source string) (*campaign.Leaf, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "campaign", "add_leaf",
		telemetry.WithAttribute(telemetry.SpanAttrCampaignID, campaignID.String()))
	defer span.End()

	var leaf *campaign.Leaf
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		c, err := repos.Campaigns().FindByIDForUpdate(ctx, campaignID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Campaign")
			}
			return err
		}
		if c.Status == campaign.CampaignStatusPaused {
			return shared.NewInvalidStateError("Campaign is paused and not accepting leaves")
		}

		leaf, err = c.NewLeaf(authorName, message, isPublic)
		if err != nil {
			return err
		}
		if err := repos.Leaves().Create(ctx, leaf); err != nil {
			return err
		}
		return repos.Campaigns().IncrementLeafCount(ctx, c.ID, 1)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.LeafCreated(ctx, source)
	s.publish(ctx, campaign.NewLeafAddedEvent(leaf, source))
	return leaf, nil
}

// ListLeaves lists the leaves shown on a campaign's tree, oldest first.
// Private leaves are listed for admins only, hidden ones only on request.
func (s *Service) ListLeaves(ctx context.Context, ref string, filter LeafListFilter, actor appshared.Actor) ([]LeafResponse, error) {
	c, err := s.ResolveVisible(ctx, ref, actor)
	if err != nil {
		return nil, err
	}
	leaves, err := s.leaves.FindByCampaign(ctx, c.ID, campaign.LeafFilter{
		IncludeHidden:  actor.Admin && filter.IncludeHidden,
		IncludePrivate: actor.Admin,
	})
	if err != nil {
		return nil, err
	}
	out := make([]LeafResponse, len(leaves))
	for i := range leaves {
		out[i] = ToLeafResponse(&leaves[i])
	}
	return out, nil
}

// SetLeafHidden toggles moderation on a leaf
func (s *Service) SetLeafHidden(ctx context.Context, leafID uuid.UUID, hidden bool) (*LeafResponse, error) {
	leaf, err := s.leaves.FindByID(ctx, leafID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Leaf")
		}
		return nil, err
	}
	leaf.SetHidden(hidden)
	if err := s.leaves.Save(ctx, leaf); err != nil {
		return nil, err
	}
	s.logger.Info("Leaf moderation changed",
		zap.String("leaf_id", leaf.ID.String()),
		zap.Bool("hidden", hidden))

	resp := ToLeafResponse(leaf)
	return &resp, nil
}

// Claim gives the authenticated patient the campaign's Sanctuary. The claim,
// the patient membership and the bridge move to claimed are one transaction.
func (s *Service) Claim(ctx context.Context, ref string, userID uuid.UUID, actor appshared.Actor) (*ClaimResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, shared.ErrUnauthenticated
	}
	if userID == uuid.Nil || actor.UserID != userID {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "You can only claim a Sanctuary for yourself")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "campaign", "claim")
	defer span.End()

	target, err := s.ResolveCampaign(ctx, ref)
	if err != nil {
		return nil, err
	}

	var (
		c      *campaign.Campaign
		b      *bridge.BridgeCampaign
		events []shared.DomainEvent
	)
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		c, err = repos.Campaigns().FindByIDForUpdate(ctx, target.ID)
		if err != nil {
			return err
		}
		if err := c.ClaimSanctuary(userID, s.now()); err != nil {
			return err
		}
		if err := repos.Campaigns().Save(ctx, c); err != nil {
			return err
		}

		membership, err := campaign.NewMembership(c.ID, userID, campaign.MembershipRolePatient)
		if err != nil {
			return err
		}
		if _, err := repos.Memberships().Ensure(ctx, membership); err != nil {
			return err
		}
		events = c.PullDomainEvents()

		if c.BridgeID != nil {
			b, err = repos.Bridges().FindByIDForUpdate(ctx, *c.BridgeID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					s.logger.Warn("Campaign references a missing bridge record",
						zap.String("campaign_id", c.ID.String()),
						zap.String("bridge_id", c.BridgeID.String()))
					b = nil
					return nil
				}
				return err
			}
			if b.Status != bridge.StatusClaimed || b.ClaimedBy == nil {
				if err := b.MarkClaimed(userID); err != nil {
					return err
				}
				if err := repos.Bridges().Save(ctx, b); err != nil {
					return err
				}
			}
			events = append(events, b.PullDomainEvents()...)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, events...)
	s.logger.Info("Sanctuary claimed",
		zap.String("campaign_id", c.ID.String()),
		zap.String("user_id", userID.String()))

	resp := &ClaimResponse{
		CampaignID:         c.ID,
		Slug:               c.Slug,
		SanctuaryClaimedBy: userID,
		SanctuaryStartDate: c.SanctuaryStartDate.Format(time.DateOnly),
	}
	if b != nil {
		resp.BridgeStatus = string(b.Status)
	}
	return resp, nil
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish campaign events", zap.Error(err))
	}
}
