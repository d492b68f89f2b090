package handler

import (
	"github.com/gin-gonic/gin"
	billingapp "github.com/treeofhope/backend/internal/application/billing"
)

// CheckoutHandler starts paid leaves through hosted checkout
type CheckoutHandler struct {
	BaseHandler
	service *billingapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(service *billingapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Activate plants the supporter's leaf and returns the checkout URL.
// POST /campaigns/:ref/activate
func (h *CheckoutHandler) Activate(c *gin.Context) {
	var req billingapp.ActivateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Activate(c.Request.Context(), c.Param("ref"), req, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
