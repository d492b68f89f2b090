package billing

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	analyticsapp "github.com/treeofhope/backend/internal/application/analytics"
	campaignapp "github.com/treeofhope/backend/internal/application/campaign"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/analytics"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
	payments "github.com/treeofhope/backend/internal/infrastructure/billing"
	"github.com/treeofhope/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var validate = validator.New()

// CheckoutService plants a supporter's leaf and opens a hosted checkout for
// their monthly commitment
type CheckoutService struct {
	planter LeafPlanter
	gateway PaymentGateway
	tracker *analyticsapp.Tracker
	metrics *telemetry.DonationMetrics
	logger  *zap.Logger
}

// CheckoutServiceConfig contains the dependencies of CheckoutService
type CheckoutServiceConfig struct {
	Planter LeafPlanter
	Gateway PaymentGateway
	Tracker *analyticsapp.Tracker
	Metrics *telemetry.DonationMetrics
	Logger  *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &CheckoutService{
		planter: cfg.Planter,
		gateway: cfg.Gateway,
		tracker: cfg.Tracker,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Activate inserts the supporter's leaf and creates the checkout session.
// The leaf is kept when checkout creation fails or the visitor abandons it.
func (s *CheckoutService) Activate(ctx context.Context, ref string, req ActivateRequest, actor appshared.Actor) (*ActivateResponse, error) {
	if err := s.validateActivate(req); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "activate")
	defer span.End()

	c, err := s.planter.ResolveVisible(ctx, ref, actor)
	if err != nil {
		return nil, err
	}

	userID := actor.UserID
	if !actor.IsAuthenticated() {
		userID = uuid.New()
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	leaf, err := s.planter.AddLeaf(ctx, c.ID, req.AuthorName, req.Message, isPublic, campaignapp.LeafSourceActivate)
	if err != nil {
		return nil, err
	}

	tier := strings.ToLower(strings.TrimSpace(req.Tier))
	sess, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutInput{
		CampaignID:      c.ID,
		UserID:          userID,
		LeafID:          leaf.ID,
		Tier:            tier,
		JoiningGiftTier: strings.ToLower(strings.TrimSpace(req.JoiningGiftTier)),
		CustomerEmail:   strings.TrimSpace(req.Email),
		SuccessURL:      req.SuccessURL,
		CancelURL:       req.CancelURL,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Checkout session creation failed",
			zap.String("campaign_id", c.ID.String()),
			zap.String("leaf_id", leaf.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError(shared.CodeUpstreamFailure, "Could not start checkout, please try again")
	}

	s.metrics.CheckoutStarted(ctx, tier)
	if s.tracker != nil {
		s.tracker.Track(ctx, analyticsapp.Event{
			Name:       analytics.EventCheckoutStarted,
			CampaignID: &c.ID,
			UserID:     &userID,
			SessionID:  req.SessionID,
			Properties: map[string]any{
				"tier":                tier,
				"joining_gift":        req.JoiningGiftTier != "",
				"leaf_id":             leaf.ID.String(),
				"checkout_session_id": sess.ID,
			},
		})
	}

	s.logger.Info("Checkout started",
		zap.String("campaign_id", c.ID.String()),
		zap.String("session_id", sess.ID),
		zap.String("tier", tier))

	return &ActivateResponse{
		CheckoutURL: sess.URL,
		SessionID:   sess.ID,
		LeafID:      leaf.ID,
	}, nil
}

func (s *CheckoutService) validateActivate(req ActivateRequest) error {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return shared.NewValidationError("Message is required")
	}
	if utf8.RuneCountInString(message) > campaign.MaxLeafMessageLength {
		return shared.NewValidationError("Message cannot exceed 500 characters")
	}
	if err := validate.Var(strings.TrimSpace(req.Email), "required,email"); err != nil {
		return shared.NewValidationError("A valid email address is required")
	}
	prices := s.gateway.Prices()
	if !prices.HasTier(req.Tier) {
		return shared.NewValidationError("Unknown tier: " + req.Tier)
	}
	if strings.TrimSpace(req.JoiningGiftTier) != "" && !prices.HasJoiningGift(req.JoiningGiftTier) {
		return shared.NewValidationError("Unknown joining gift: " + req.JoiningGiftTier)
	}
	for _, u := range []string{req.SuccessURL, req.CancelURL} {
		if u == "" {
			continue
		}
		if err := validate.Var(u, "url"); err != nil {
			return shared.NewValidationError("Redirect URLs must be absolute URLs")
		}
	}
	return nil
}
