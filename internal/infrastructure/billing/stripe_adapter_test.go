package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/form"
	"github.com/stripe/stripe-go/v81/webhook"
	"github.com/treeofhope/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// mockBackend implements stripe.Backend for testing
type mockBackend struct {
	handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)
	calls   []string
}

func (m *mockBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	return m.respond(method, path, params, v)
}

func (m *mockBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	return m.respond(method, path, nil, v)
}

func (m *mockBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) SetMaxNetworkRetries(maxNetworkRetries int64) {}

func (m *mockBackend) respond(method, path string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	m.calls = append(m.calls, method+" "+path)
	data, err := m.handler(method, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

const testWebhookSecret = "whsec_test_123456789"

func testStripeConfig() config.StripeConfig {
	return config.StripeConfig{
		SecretKey:       "sk_test_123456789",
		WebhookSecret:   testWebhookSecret,
		DefaultCurrency: "usd",
		SuccessURL:      "https://treeofhope.test/checkout/success",
		CancelURL:       "https://treeofhope.test/checkout/cancelled",
		TierPrices: map[string]string{
			"seed":    "price_seed_monthly",
			"sapling": "price_sapling_monthly",
		},
		JoiningGiftPrices: map[string]string{
			"watering-can": "price_gift_once",
		},
	}
}

func newTestAdapter(t *testing.T, handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)) (*StripeAdapter, *mockBackend) {
	t.Helper()
	backend := &mockBackend{handler: handler}
	adapter, err := NewStripeAdapter(testStripeConfig(), zap.NewNop(), WithBackend(backend))
	require.NoError(t, err)
	return adapter, backend
}

func signedPayload(t *testing.T, eventID, eventType string, object map[string]any) ([]byte, string) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"api_version": "2019-01-01",
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: raw,
		Secret:  testWebhookSecret,
	})
	return signed.Payload, signed.Header
}

func TestValidateStripeConfig(t *testing.T) {
	assert.NoError(t, ValidateStripeConfig(testStripeConfig()))

	cfg := testStripeConfig()
	cfg.SecretKey = ""
	assert.Error(t, ValidateStripeConfig(cfg))

	cfg = testStripeConfig()
	cfg.SecretKey = "pk_test_123"
	assert.Error(t, ValidateStripeConfig(cfg))

	cfg = testStripeConfig()
	cfg.WebhookSecret = ""
	assert.Error(t, ValidateStripeConfig(cfg))

	_, err := NewStripeAdapter(cfg, nil)
	assert.Error(t, err)
}

func TestPriceCatalog(t *testing.T) {
	catalog := NewPriceCatalog(
		map[string]string{"Seed": "price_seed", "blank": " ", "": "price_x"},
		map[string]string{"gift": "price_gift"},
	)

	assert.True(t, catalog.HasTier("seed"))
	assert.True(t, catalog.HasTier(" SEED "))
	assert.False(t, catalog.HasTier("blank"))
	assert.Equal(t, []string{"seed"}, catalog.Tiers())

	id, err := catalog.TierPriceID("seed")
	require.NoError(t, err)
	assert.Equal(t, "price_seed", id)

	_, err = catalog.TierPriceID("oak")
	assert.Error(t, err)

	assert.True(t, catalog.HasJoiningGift("gift"))
	_, err = catalog.JoiningGiftPriceID("none")
	assert.Error(t, err)
}

func TestCreateCheckoutSession(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	adapter, backend := newTestAdapter(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		captured = params.(*stripe.CheckoutSessionParams)
		return []byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.test/cs_test_1"}`), nil
	})

	input := CheckoutInput{
		CampaignID:      uuid.New(),
		UserID:          uuid.New(),
		LeafID:          uuid.New(),
		Tier:            "Seed",
		JoiningGiftTier: "watering-can",
		CustomerEmail:   "friend@example.com",
	}
	sess, err := adapter.CreateCheckoutSession(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", sess.URL)
	assert.Equal(t, []string{"POST /v1/checkout/sessions"}, backend.calls)

	require.NotNil(t, captured)
	assert.Equal(t, "subscription", *captured.Mode)
	require.Len(t, captured.LineItems, 2)
	assert.Equal(t, "price_seed_monthly", *captured.LineItems[0].Price)
	assert.Equal(t, "price_gift_once", *captured.LineItems[1].Price)
	assert.Equal(t, "https://treeofhope.test/checkout/success", *captured.SuccessURL)
	assert.Equal(t, "friend@example.com", *captured.CustomerEmail)
	assert.Equal(t, input.CampaignID.String(), captured.Metadata[MetadataCampaignID])
	assert.Equal(t, input.UserID.String(), captured.Metadata[MetadataUserID])
	assert.Equal(t, input.LeafID.String(), captured.Metadata[MetadataLeafID])
	assert.Equal(t, "seed", captured.Metadata[MetadataTier])
	assert.Equal(t, captured.Metadata, captured.SubscriptionData.Metadata)
}

func TestCreateCheckoutSessionErrors(t *testing.T) {
	t.Run("unknown tier makes no call", func(t *testing.T) {
		adapter, backend := newTestAdapter(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
			return nil, errors.New("unexpected call")
		})
		_, err := adapter.CreateCheckoutSession(context.Background(), CheckoutInput{Tier: "oak"})
		assert.Error(t, err)
		assert.Empty(t, backend.calls)
	})

	t.Run("unknown joining gift", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
			return nil, errors.New("unexpected call")
		})
		_, err := adapter.CreateCheckoutSession(context.Background(), CheckoutInput{Tier: "seed", JoiningGiftTier: "piano"})
		assert.Error(t, err)
	})

	t.Run("api failure is wrapped", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
			return nil, errors.New("card network down")
		})
		_, err := adapter.CreateCheckoutSession(context.Background(), CheckoutInput{Tier: "seed"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stripe: failed to create checkout session")
	})
}

func TestRecurringAmount(t *testing.T) {
	adapter, backend := newTestAdapter(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return []byte(`{
			"object": "list",
			"url": "/v1/checkout/sessions/cs_test_1/line_items",
			"has_more": false,
			"data": [
				{"id": "li_1", "object": "item", "quantity": 2,
				 "price": {"id": "price_seed_monthly", "unit_amount": 500, "recurring": {"interval": "month"}}},
				{"id": "li_2", "object": "item", "quantity": 1,
				 "price": {"id": "price_gift_once", "unit_amount": 2500}}
			]
		}`), nil
	})

	total, err := adapter.RecurringAmount(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total)
	require.Len(t, backend.calls, 1)
	assert.Equal(t, "GET /v1/checkout/sessions/cs_test_1/line_items", backend.calls[0])
}

func TestRecurringAmountError(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return nil, errors.New("timeout")
	})
	_, err := adapter.RecurringAmount(context.Background(), "cs_test_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe: failed to list line items")
}

func TestPauseAndResumeCollection(t *testing.T) {
	var captured []*stripe.SubscriptionParams
	adapter, backend := newTestAdapter(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		captured = append(captured, params.(*stripe.SubscriptionParams))
		return []byte(`{"id":"sub_123","object":"subscription","status":"active"}`), nil
	})

	require.NoError(t, adapter.PauseCollection(context.Background(), "sub_123"))
	require.NoError(t, adapter.ResumeCollection(context.Background(), "sub_123"))

	assert.Equal(t, []string{"POST /v1/subscriptions/sub_123", "POST /v1/subscriptions/sub_123"}, backend.calls)
	require.Len(t, captured, 2)
	require.NotNil(t, captured[0].PauseCollection)
	assert.Equal(t, "void", *captured[0].PauseCollection.Behavior)
	assert.Nil(t, captured[1].PauseCollection)
	require.NotNil(t, captured[1].Extra)
	assert.Equal(t, []string{""}, captured[1].Extra.Values["pause_collection"])
}

func TestPauseCollectionError(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return nil, fmt.Errorf("no such subscription")
	})
	err := adapter.PauseCollection(context.Background(), "sub_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe: failed to pause collection")
}

func TestConstructEvent(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return nil, errors.New("unexpected call")
	})

	t.Run("checkout completed", func(t *testing.T) {
		payload, header := signedPayload(t, "evt_1", EventCheckoutSessionCompleted, map[string]any{
			"id":           "cs_test_1",
			"object":       "checkout.session",
			"subscription": "sub_123",
			"customer":     "cus_456",
			"metadata": map[string]string{
				"campaign_id": "c1", "user_id": "u1", "leaf_id": "l1", "tier": "seed",
			},
		})
		event, err := adapter.ConstructEvent(payload, header)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", event.ID)
		require.NotNil(t, event.Checkout)
		assert.Equal(t, CheckoutCompleted{
			SessionID: "cs_test_1", SubscriptionID: "sub_123", CustomerID: "cus_456",
			CampaignID: "c1", UserID: "u1", LeafID: "l1", Tier: "seed",
		}, *event.Checkout)
		assert.Nil(t, event.Invoice)
		assert.Nil(t, event.Subscription)
	})

	t.Run("invoice payment failed", func(t *testing.T) {
		payload, header := signedPayload(t, "evt_2", EventInvoicePaymentFailed, map[string]any{
			"id": "in_1", "object": "invoice", "subscription": "sub_123",
		})
		event, err := adapter.ConstructEvent(payload, header)
		require.NoError(t, err)
		require.NotNil(t, event.Invoice)
		assert.Equal(t, "sub_123", event.Invoice.SubscriptionID)
	})

	t.Run("subscription updated with pause", func(t *testing.T) {
		payload, header := signedPayload(t, "evt_3", EventSubscriptionUpdated, map[string]any{
			"id": "sub_123", "object": "subscription", "status": "active",
			"pause_collection": map[string]any{"behavior": "void"},
		})
		event, err := adapter.ConstructEvent(payload, header)
		require.NoError(t, err)
		require.NotNil(t, event.Subscription)
		assert.Equal(t, "active", event.Subscription.Status)
		assert.True(t, event.Subscription.CollectionPaused)
	})

	t.Run("unhandled type has no payload", func(t *testing.T) {
		payload, header := signedPayload(t, "evt_4", "charge.refunded", map[string]any{"id": "ch_1", "object": "charge"})
		event, err := adapter.ConstructEvent(payload, header)
		require.NoError(t, err)
		assert.Equal(t, "charge.refunded", event.Type)
		assert.Nil(t, event.Checkout)
		assert.Nil(t, event.Invoice)
		assert.Nil(t, event.Subscription)
	})

	t.Run("undecodable object keeps id and type", func(t *testing.T) {
		payload, header := signedPayload(t, "evt_7", EventCheckoutSessionCompleted, map[string]any{
			"id": "cs_test_7", "object": "checkout.session", "metadata": 42,
		})
		event, err := adapter.ConstructEvent(payload, header)
		require.NoError(t, err)
		assert.Equal(t, "evt_7", event.ID)
		assert.Equal(t, EventCheckoutSessionCompleted, event.Type)
		assert.Nil(t, event.Checkout)
	})

	t.Run("bad signature", func(t *testing.T) {
		payload, _ := signedPayload(t, "evt_5", EventInvoicePaid, map[string]any{"id": "in_1", "object": "invoice"})
		_, err := adapter.ConstructEvent(payload, "t=1,v1=deadbeef")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		payload, header := signedPayload(t, "evt_6", EventInvoicePaid, map[string]any{"id": "in_1", "object": "invoice"})
		tampered := bytes.Replace(payload, []byte("in_1"), []byte("in_2"), 1)
		_, err := adapter.ConstructEvent(tampered, header)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}
