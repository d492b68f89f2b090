package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	billingapp "github.com/treeofhope/backend/internal/application/billing"
	"github.com/treeofhope/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Stripe webhook payloads are small
const maxWebhookPayloadSize = 65536

// StripeWebhookHandler receives provider callbacks. The route is
// authenticated by the payload signature, not by bearer token.
type StripeWebhookHandler struct {
	BaseHandler
	webhookService *billingapp.StripeWebhookService
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(webhookService *billingapp.StripeWebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{webhookService: webhookService}
}

// StripeWebhookResponse is the body answered to the provider
type StripeWebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

// HandleStripeWebhook verifies and applies a billing event. Once the
// signature verifies the answer is 200, also when applying failed.
// POST /webhooks/stripe
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, StripeWebhookResponse{Message: "Payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{Message: "Failed to read request body"})
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, StripeWebhookResponse{Message: "Payload too large"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{Message: "Missing Stripe-Signature header"})
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if result == nil {
		logger.L(c.Request.Context()).Warn("Rejected Stripe webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{Message: "Webhook signature verification failed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, StripeWebhookResponse{
			Received:  true,
			EventID:   result.EventID,
			EventType: result.EventType,
			Message:   "Webhook received but processing encountered an issue",
		})
		return
	}

	c.JSON(http.StatusOK, StripeWebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Duplicate: result.Duplicate,
		Message:   result.Message,
	})
}
