package billing

import (
	"errors"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
)

// ErrInvalidSignature is returned when a webhook payload fails verification
var ErrInvalidSignature = errors.New("stripe: webhook signature verification failed")

// Metadata keys written on checkout sessions and their subscriptions
const (
	MetadataCampaignID = "campaign_id"
	MetadataUserID     = "user_id"
	MetadataLeafID     = "leaf_id"
	MetadataTier       = "tier"
)

// Webhook event types consumed by the service
const (
	EventCheckoutSessionCompleted = string(stripe.EventTypeCheckoutSessionCompleted)
	EventInvoicePaymentFailed     = string(stripe.EventTypeInvoicePaymentFailed)
	EventInvoicePaid              = string(stripe.EventTypeInvoicePaid)
	EventSubscriptionDeleted      = string(stripe.EventTypeCustomerSubscriptionDeleted)
	EventSubscriptionUpdated      = string(stripe.EventTypeCustomerSubscriptionUpdated)
)

// CheckoutInput contains input for creating a hosted checkout session
type CheckoutInput struct {
	CampaignID      uuid.UUID
	UserID          uuid.UUID
	LeafID          uuid.UUID
	Tier            string
	JoiningGiftTier string // optional one-time gift added to the first invoice
	CustomerEmail   string
	SuccessURL      string // falls back to the configured default
	CancelURL       string // falls back to the configured default
}

// CheckoutSession is the created session the visitor is redirected to
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified provider event parsed into the payload for its
// type. Exactly one of Checkout, Invoice or Subscription is set for the
// handled types; all are nil for anything else.
type WebhookEvent struct {
	ID           string
	Type         string
	Checkout     *CheckoutCompleted
	Invoice      *InvoiceEvent
	Subscription *SubscriptionEvent
}

// CheckoutCompleted is the payload of checkout.session.completed
type CheckoutCompleted struct {
	SessionID      string
	SubscriptionID string
	CustomerID     string
	CampaignID     string
	UserID         string
	LeafID         string
	Tier           string
}

// InvoiceEvent is the payload of invoice.paid and invoice.payment_failed
type InvoiceEvent struct {
	InvoiceID      string
	SubscriptionID string
}

// SubscriptionEvent is the payload of customer.subscription.updated and deleted
type SubscriptionEvent struct {
	SubscriptionID   string
	Status           string
	CollectionPaused bool
}
