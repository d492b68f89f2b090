package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"github.com/treeofhope/backend/internal/infrastructure/config"
	"github.com/treeofhope/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// pauseBehaviorVoid keeps the subscription alive but voids invoices while paused
const pauseBehaviorVoid = "void"

// StripeAdapter talks to Stripe for checkout sessions, subscription
// collection and webhook verification
type StripeAdapter struct {
	api           *client.API
	prices        PriceCatalog
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
	logger        *zap.Logger
}

// AdapterOption configures a StripeAdapter
type AdapterOption func(*adapterOptions)

type adapterOptions struct {
	backend stripe.Backend
}

// WithBackend routes all API calls through b
func WithBackend(b stripe.Backend) AdapterOption {
	return func(o *adapterOptions) {
		o.backend = b
	}
}

// NewStripeAdapter creates a new StripeAdapter
func NewStripeAdapter(cfg config.StripeConfig, logger *zap.Logger, opts ...AdapterOption) (*StripeAdapter, error) {
	if err := ValidateStripeConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	options := &adapterOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var backends *stripe.Backends
	if options.backend != nil {
		backends = &stripe.Backends{
			API:     options.backend,
			Connect: options.backend,
			Uploads: options.backend,
		}
	}

	return &StripeAdapter{
		api:           client.New(cfg.SecretKey, backends),
		prices:        NewPriceCatalog(cfg.TierPrices, cfg.JoiningGiftPrices),
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.DefaultCurrency,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		logger:        logger,
	}, nil
}

// Prices returns the configured price catalog
func (a *StripeAdapter) Prices() PriceCatalog {
	return a.prices
}

// CreateCheckoutSession creates a subscription-mode checkout session for a
// monthly tier with an optional one-time joining gift
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error) {
	ctx, span := telemetry.StartSpan(ctx, "stripe.checkout_session.create",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrCampaignID, input.CampaignID.String()),
	)
	defer span.End()

	priceID, err := a.prices.TierPriceID(input.Tier)
	if err != nil {
		return nil, err
	}

	lineItems := []*stripe.CheckoutSessionLineItemParams{
		{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
	}
	if gift := strings.TrimSpace(input.JoiningGiftTier); gift != "" {
		giftPriceID, err := a.prices.JoiningGiftPriceID(gift)
		if err != nil {
			return nil, err
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(giftPriceID),
			Quantity: stripe.Int64(1),
		})
	}

	metadata := map[string]string{
		MetadataCampaignID: input.CampaignID.String(),
		MetadataUserID:     input.UserID.String(),
		MetadataLeafID:     input.LeafID.String(),
		MetadataTier:       strings.ToLower(strings.TrimSpace(input.Tier)),
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems:         lineItems,
		SuccessURL:        stripe.String(firstNonEmpty(input.SuccessURL, a.successURL)),
		CancelURL:         stripe.String(firstNonEmpty(input.CancelURL, a.cancelURL)),
		ClientReferenceID: stripe.String(input.UserID.String()),
		Metadata:          metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	if input.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(input.CustomerEmail)
	}
	params.Context = ctx

	a.logger.Debug("Creating Stripe checkout session",
		zap.String("campaign_id", input.CampaignID.String()),
		zap.String("tier", input.Tier),
		zap.Bool("joining_gift", input.JoiningGiftTier != ""))

	sess, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		telemetry.RecordError(span, err)
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("campaign_id", input.CampaignID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	a.logger.Info("Stripe checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("campaign_id", input.CampaignID.String()))

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// RecurringAmount sums unit amount times quantity over the session's
// recurring line items. One-time joining gifts are excluded.
func (a *StripeAdapter) RecurringAmount(ctx context.Context, sessionID string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "stripe.checkout_session.line_items",
		telemetry.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx

	var total int64
	iter := a.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		item := iter.LineItem()
		if item.Price == nil || item.Price.Recurring == nil {
			continue
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		total += item.Price.UnitAmount * qty
	}
	if err := iter.Err(); err != nil {
		telemetry.RecordError(span, err)
		a.logger.Error("Failed to list Stripe checkout line items",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return 0, fmt.Errorf("stripe: failed to list line items: %w", err)
	}
	return total, nil
}

// PauseCollection pauses payment collection on a subscription, voiding
// invoices until collection resumes
func (a *StripeAdapter) PauseCollection(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{
		PauseCollection: &stripe.SubscriptionPauseCollectionParams{
			Behavior: stripe.String(pauseBehaviorVoid),
		},
	}
	params.Context = ctx

	a.logger.Debug("Pausing Stripe subscription collection",
		zap.String("subscription_id", subscriptionID))

	if _, err := a.api.Subscriptions.Update(subscriptionID, params); err != nil {
		a.logger.Error("Failed to pause Stripe subscription collection",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return fmt.Errorf("stripe: failed to pause collection: %w", err)
	}

	a.logger.Info("Stripe subscription collection paused",
		zap.String("subscription_id", subscriptionID))
	return nil
}

// ResumeCollection clears pause_collection on a subscription
func (a *StripeAdapter) ResumeCollection(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{}
	params.AddExtra("pause_collection", "")
	params.Context = ctx

	a.logger.Debug("Resuming Stripe subscription collection",
		zap.String("subscription_id", subscriptionID))

	if _, err := a.api.Subscriptions.Update(subscriptionID, params); err != nil {
		a.logger.Error("Failed to resume Stripe subscription collection",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return fmt.Errorf("stripe: failed to resume collection: %w", err)
	}

	a.logger.Info("Stripe subscription collection resumed",
		zap.String("subscription_id", subscriptionID))
	return nil
}

// ConstructEvent verifies the Stripe-Signature header against the raw payload
// and parses the event into its typed payload. Verification failures wrap
// ErrInvalidSignature. A verified event whose object cannot be decoded comes
// back with only its ID and Type so it is acknowledged as unhandled.
func (a *StripeAdapter) ConstructEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, a.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	parsed, err := parseEvent(event)
	if err != nil {
		a.logger.Warn("Verified Stripe event has an undecodable object",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return &WebhookEvent{ID: event.ID, Type: string(event.Type)}, nil
	}
	return parsed, nil
}

func parseEvent(event stripe.Event) (*WebhookEvent, error) {
	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("stripe: failed to unmarshal checkout session: %w", err)
		}
		c := &CheckoutCompleted{
			SessionID:  sess.ID,
			CampaignID: sess.Metadata[MetadataCampaignID],
			UserID:     sess.Metadata[MetadataUserID],
			LeafID:     sess.Metadata[MetadataLeafID],
			Tier:       sess.Metadata[MetadataTier],
		}
		if sess.Subscription != nil {
			c.SubscriptionID = sess.Subscription.ID
		}
		if sess.Customer != nil {
			c.CustomerID = sess.Customer.ID
		}
		out.Checkout = c

	case EventInvoicePaid, EventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("stripe: failed to unmarshal invoice: %w", err)
		}
		e := &InvoiceEvent{InvoiceID: inv.ID}
		if inv.Subscription != nil {
			e.SubscriptionID = inv.Subscription.ID
		}
		out.Invoice = e

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("stripe: failed to unmarshal subscription: %w", err)
		}
		out.Subscription = &SubscriptionEvent{
			SubscriptionID:   sub.ID,
			Status:           string(sub.Status),
			CollectionPaused: sub.PauseCollection != nil,
		}
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
