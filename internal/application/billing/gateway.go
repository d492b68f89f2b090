// Package billing starts checkouts, applies payment provider webhooks to
// commitments and handles supporter self-service on commitments.
package billing

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/campaign"
	payments "github.com/treeofhope/backend/internal/infrastructure/billing"
)

// PaymentGateway is the payment provider as seen by the billing services
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input payments.CheckoutInput) (*payments.CheckoutSession, error)
	RecurringAmount(ctx context.Context, sessionID string) (int64, error)
	PauseCollection(ctx context.Context, subscriptionID string) error
	ResumeCollection(ctx context.Context, subscriptionID string) error
	ConstructEvent(payload []byte, signature string) (*payments.WebhookEvent, error)
	Prices() payments.PriceCatalog
}

// LeafPlanter resolves campaigns and places leaves on them
type LeafPlanter interface {
	ResolveVisible(ctx context.Context, ref string, actor appshared.Actor) (*campaign.Campaign, error)
	AddLeaf(ctx context.Context, campaignID uuid.UUID, authorName, message string, isPublic bool, source string) (*campaign.Leaf, error)
}

var _ PaymentGateway = (*payments.StripeAdapter)(nil)
