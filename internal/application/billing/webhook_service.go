package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/billing"
	"github.com/treeofhope/backend/internal/domain/campaign"
	"github.com/treeofhope/backend/internal/domain/shared"
	payments "github.com/treeofhope/backend/internal/infrastructure/billing"
	"github.com/treeofhope/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Webhook outcomes recorded on the webhook metric
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeFailed    = "failed"
)

// DefaultWebhookTTL is how long a processed event id is remembered
const DefaultWebhookTTL = 24 * time.Hour

// StripeWebhookService applies verified payment provider events to commitments
type StripeWebhookService struct {
	gateway     PaymentGateway
	commitments billing.CommitmentRepository
	txScope     appshared.TransactionScope
	idempotency shared.IdempotencyStore
	publisher   shared.EventPublisher
	metrics     *telemetry.DonationMetrics
	ttl         time.Duration
	logger      *zap.Logger
}

// StripeWebhookServiceConfig contains configuration for StripeWebhookService
type StripeWebhookServiceConfig struct {
	Gateway     PaymentGateway
	Commitments billing.CommitmentRepository
	TxScope     appshared.TransactionScope
	Idempotency shared.IdempotencyStore
	Publisher   shared.EventPublisher
	Metrics     *telemetry.DonationMetrics
	TTL         time.Duration
	Logger      *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg StripeWebhookServiceConfig) *StripeWebhookService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultWebhookTTL
	}
	return &StripeWebhookService{
		gateway:     cfg.Gateway,
		commitments: cfg.Commitments,
		txScope:     cfg.TxScope,
		idempotency: cfg.Idempotency,
		publisher:   cfg.Publisher,
		metrics:     cfg.Metrics,
		ttl:         cfg.TTL,
		logger:      cfg.Logger,
	}
}

// ProcessWebhook verifies and applies a webhook delivery. A verification
// failure returns an error wrapping payments.ErrInvalidSignature and a nil
// result; nothing is changed in that case. Any other error comes with a result.
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		s.logger.Warn("Rejected webhook delivery", zap.Error(err))
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "process_webhook",
		telemetry.WithAttribute(telemetry.SpanAttrEventID, event.ID),
		telemetry.WithAttribute(telemetry.SpanAttrEventType, event.Type))
	defer span.End()

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: event.Type,
		Processed: true,
	}

	claimed := false
	if s.idempotency != nil && event.ID != "" {
		first, err := s.idempotency.MarkProcessed(ctx, event.ID, s.ttl)
		switch {
		case err != nil:
			s.logger.Warn("Idempotency store unavailable, processing event anyway",
				zap.String("event_id", event.ID),
				zap.Error(err))
		case !first:
			s.logger.Info("Skipping already processed webhook event",
				zap.String("event_id", event.ID))
			s.metrics.WebhookEvent(ctx, event.Type, OutcomeDuplicate)
			result.Processed = false
			result.Duplicate = true
			result.Message = "Event already processed"
			return result, nil
		default:
			claimed = true
		}
	}

	switch {
	case event.Type == payments.EventCheckoutSessionCompleted && event.Checkout != nil:
		err = s.handleCheckoutCompleted(ctx, event.Checkout)
	case event.Type == payments.EventInvoicePaymentFailed && event.Invoice != nil:
		err = s.updateStatus(ctx, event, event.Invoice.SubscriptionID, billing.CommitmentStatusPastDue)
	case event.Type == payments.EventInvoicePaid && event.Invoice != nil:
		err = s.updateStatus(ctx, event, event.Invoice.SubscriptionID, billing.CommitmentStatusActive,
			billing.CommitmentStatusPastDue)
	case event.Type == payments.EventSubscriptionDeleted && event.Subscription != nil:
		err = s.updateStatus(ctx, event, event.Subscription.SubscriptionID, billing.CommitmentStatusCancelled)
	case event.Type == payments.EventSubscriptionUpdated && event.Subscription != nil:
		status := billing.MapProviderStatus(event.Subscription.Status, event.Subscription.CollectionPaused)
		err = s.updateStatus(ctx, event, event.Subscription.SubscriptionID, status)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", event.Type))
		s.metrics.WebhookEvent(ctx, event.Type, OutcomeIgnored)
		result.Message = "Event type not handled"
		return result, nil
	}

	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		if claimed {
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), event.ID); relErr != nil {
				s.logger.Warn("Failed to release webhook event id",
					zap.String("event_id", event.ID),
					zap.Error(relErr))
			}
		}
		s.metrics.WebhookEvent(ctx, event.Type, OutcomeFailed)
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	s.metrics.WebhookEvent(ctx, event.Type, OutcomeProcessed)
	return result, nil
}

// handleCheckoutCompleted records the commitment, the supporter membership and
// the campaign totals together, and activates a pre-built bridge
func (s *StripeWebhookService) handleCheckoutCompleted(ctx context.Context, e *payments.CheckoutCompleted) error {
	campaignID, err := uuid.Parse(e.CampaignID)
	if err != nil {
		s.logger.Warn("Checkout session has no valid campaign_id metadata, skipping",
			zap.String("session_id", e.SessionID))
		return nil
	}
	userID, err := uuid.Parse(e.UserID)
	if err != nil {
		s.logger.Warn("Checkout session has no valid user_id metadata, skipping",
			zap.String("session_id", e.SessionID))
		return nil
	}
	if e.SubscriptionID == "" {
		s.logger.Warn("Checkout session has no subscription, skipping",
			zap.String("session_id", e.SessionID))
		return nil
	}

	amount, err := s.gateway.RecurringAmount(ctx, e.SessionID)
	if err != nil {
		return err
	}

	commitment, err := billing.NewCommitment(campaignID, userID, e.SubscriptionID, e.CustomerID, e.Tier, amount)
	if err != nil {
		return err
	}

	applied := false
	var events []shared.DomainEvent
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		created, err := repos.Commitments().CreateIfAbsent(ctx, commitment)
		if err != nil {
			return fmt.Errorf("failed to insert commitment: %w", err)
		}
		if !created {
			return nil
		}
		applied = true

		membership, err := campaign.NewMembership(campaignID, userID, campaign.MembershipRoleSupporter)
		if err != nil {
			return err
		}
		if _, err := repos.Memberships().Ensure(ctx, membership); err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}
		if err := repos.Campaigns().IncrementSupportTotals(ctx, campaignID, 1, amount); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Campaign")
			}
			return fmt.Errorf("failed to update campaign totals: %w", err)
		}

		b, err := repos.Bridges().FindByCampaignID(ctx, campaignID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		b, err = repos.Bridges().FindByIDForUpdate(ctx, b.ID)
		if err != nil {
			return err
		}
		if b.MarkActive() {
			if err := repos.Bridges().Save(ctx, b); err != nil {
				return err
			}
			events = append(events, b.PullDomainEvents()...)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !applied {
		s.logger.Info("Commitment already recorded for subscription",
			zap.String("campaign_id", campaignID.String()),
			zap.String("subscription_id", e.SubscriptionID))
		return nil
	}

	events = append(commitment.PullDomainEvents(), events...)
	s.publish(ctx, events...)
	s.metrics.CommitmentCreated(ctx, commitment.Tier, amount)

	s.logger.Info("Commitment created from checkout",
		zap.String("commitment_id", commitment.ID.String()),
		zap.String("campaign_id", campaignID.String()),
		zap.Int64("monthly_amount_cents", amount))
	return nil
}

// updateStatus applies a provider-reported status to every commitment on the
// subscription. Unknown subscriptions change nothing.
func (s *StripeWebhookService) updateStatus(ctx context.Context, event *payments.WebhookEvent, subscriptionID string, status billing.CommitmentStatus, onlyFrom ...billing.CommitmentStatus) error {
	if subscriptionID == "" {
		s.logger.Warn("Webhook event has no subscription id, skipping",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type))
		return nil
	}
	n, err := s.commitments.UpdateStatusBySubscription(ctx, subscriptionID, status, onlyFrom...)
	if err != nil {
		return fmt.Errorf("failed to update commitment status: %w", err)
	}
	s.logger.Info("Commitment status updated from webhook",
		zap.String("event_type", event.Type),
		zap.String("subscription_id", subscriptionID),
		zap.String("status", string(status)),
		zap.Int64("rows", n))
	return nil
}

func (s *StripeWebhookService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events", zap.Error(err))
	}
}
