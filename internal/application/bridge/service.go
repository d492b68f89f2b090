// Package bridge runs the pipeline that turns scouted external fundraisers
// into pre-built Tree of Hope campaigns.
package bridge

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/bridge"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
	"github.com/treeofhope/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service handles bridge pipeline operations
type Service struct {
	bridges   bridge.Repository
	outreach  bridge.OutreachRepository
	txScope   appshared.TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new bridge Service
func NewService(
	bridges bridge.Repository,
	outreach bridge.OutreachRepository,
	txScope appshared.TransactionScope,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		bridges:   bridges,
		outreach:  outreach,
		txScope:   txScope,
		publisher: publisher,
		logger:    logger,
	}
}

// Scout records an external fundraiser in status scouted
func (s *Service) Scout(ctx context.Context, req ScoutRequest) (*BridgeResponse, error) {
	b, err := bridge.Scout(req.SourceURL, bridge.ScoutDetails{
		Title:         req.Title,
		OrganiserName: req.OrganiserName,
		RaisedCents:   req.RaisedCents,
		GoalCents:     req.GoalCents,
		DonorCount:    req.DonorCount,
		Category:      req.Category,
	})
	if err != nil {
		return nil, err
	}
	if err := s.bridges.Create(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, b.PullDomainEvents()...)

	s.logger.Info("Bridge campaign scouted",
		zap.String("bridge_id", b.ID.String()),
		zap.String("source_url", b.SourceURL))

	resp := ToBridgeResponse(b)
	return &resp, nil
}

// PreBuild generates the draft campaign for a scouted record. The campaign,
// its three welcome leaves and the bridge update commit together.
func (s *Service) PreBuild(ctx context.Context, id uuid.UUID, req PreBuildRequest) (*PreBuildResponse, error) {
	if err := validatePreBuild(req); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "bridge", "pre_build",
		telemetry.WithAttribute(telemetry.SpanAttrBridgeID, id.String()))
	defer span.End()

	var (
		b      *bridge.BridgeCampaign
		c      *campaign.Campaign
		events []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		b, err = repos.Bridges().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if b.Status != bridge.StatusScouted {
			return shared.NewInvalidStateError("Only scouted bridge campaigns can be pre-built")
		}

		c, err = campaign.NewCampaignFromBridge(b.ID, req.Title, req.PatientName, req.Story)
		if err != nil {
			return err
		}
		leaves, err := c.SeedWelcomeLeaves()
		if err != nil {
			return err
		}
		if err := appshared.CreateCampaignWithUniqueSlug(ctx, repos.Campaigns(), c); err != nil {
			return err
		}
		if err := repos.Leaves().CreateBatch(ctx, leaves); err != nil {
			return err
		}

		if err := b.MarkPreBuilt(c); err != nil {
			return err
		}
		if err := repos.Bridges().Save(ctx, b); err != nil {
			return err
		}

		events = append(c.PullDomainEvents(), b.PullDomainEvents()...)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, events...)
	s.logger.Info("Bridge campaign pre-built",
		zap.String("bridge_id", b.ID.String()),
		zap.String("campaign_id", c.ID.String()),
		zap.String("slug", c.Slug))

	return &PreBuildResponse{
		Bridge:       ToBridgeResponse(b),
		CampaignID:   c.ID,
		CampaignSlug: c.Slug,
		LeafCount:    c.LeafCount,
	}, nil
}

func validatePreBuild(req PreBuildRequest) error {
	var missing []string
	if strings.TrimSpace(req.PatientName) == "" {
		missing = append(missing, "patient_name")
	}
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Story) == "" {
		missing = append(missing, "story")
	}
	if len(missing) > 0 {
		return shared.NewValidationError("Missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// Skip passes on a scouted record. The record stays scouted.
func (s *Service) Skip(ctx context.Context, id uuid.UUID, req SkipRequest) (*BridgeResponse, error) {
	b, err := s.bridges.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := b.Skip(req.Reason); err != nil {
		return nil, err
	}
	s.publish(ctx, b.PullDomainEvents()...)

	resp := ToBridgeResponse(b)
	return &resp, nil
}

// UpdateStatus is the manual forward-only status change
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*BridgeResponse, error) {
	var b *bridge.BridgeCampaign
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		b, err = repos.Bridges().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if err := b.AdvanceTo(bridge.Status(req.Status)); err != nil {
			return err
		}
		return repos.Bridges().Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, b.PullDomainEvents()...)

	s.logger.Info("Bridge status changed manually",
		zap.String("bridge_id", b.ID.String()),
		zap.String("status", string(b.Status)))

	resp := ToBridgeResponse(b)
	return &resp, nil
}

// LogOutreach appends an outreach entry to a bridge record
func (s *Service) LogOutreach(ctx context.Context, id uuid.UUID, req LogOutreachRequest, actor appshared.Actor) (*OutreachResponse, error) {
	channel := bridge.Channel(strings.ToLower(strings.TrimSpace(req.Channel)))
	if !channel.IsValid() {
		return nil, shared.NewValidationError("Channel must be one of email, phone, sms, message, meeting")
	}
	response := bridge.ResponseStatus(strings.ToLower(strings.TrimSpace(req.ResponseStatus)))
	if !response.IsValid() {
		return nil, shared.NewValidationError("Invalid response status")
	}

	b, err := s.bridges.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	entry, err := bridge.NewOutreach(b.ID, channel, req.Message, response, actor.UserIDPtr())
	if err != nil {
		return nil, err
	}
	if err := s.outreach.Create(ctx, entry); err != nil {
		return nil, err
	}

	resp := ToOutreachResponse(entry)
	return &resp, nil
}

// ListOutreach lists a bridge record's outreach newest first
func (s *Service) ListOutreach(ctx context.Context, id uuid.UUID) ([]OutreachResponse, error) {
	if _, err := s.bridges.FindByID(ctx, id); err != nil {
		return nil, notFound(err)
	}
	entries, err := s.outreach.FindByBridge(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]OutreachResponse, len(entries))
	for i := range entries {
		out[i] = ToOutreachResponse(&entries[i])
	}
	return out, nil
}

// Get returns a bridge record
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*BridgeResponse, error) {
	b, err := s.bridges.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := ToBridgeResponse(b)
	return &resp, nil
}

// List lists bridge records for the admin pipeline view
func (s *Service) List(ctx context.Context, filter BridgeListFilter) (shared.Paginated[BridgeResponse], error) {
	domainFilter := bridge.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		Status: bridge.Status(filter.Status),
	}

	records, total, err := s.bridges.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[BridgeResponse]{}, err
	}
	items := make([]BridgeResponse, len(records))
	for i := range records {
		items[i] = ToBridgeResponse(&records[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish bridge events", zap.Error(err))
	}
}

func notFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError("Bridge campaign")
	}
	return err
}
