package handler

import (
	"github.com/gin-gonic/gin"
	billingapp "github.com/treeofhope/backend/internal/application/billing"
)

// CommitmentHandler serves the supporter's own commitments
type CommitmentHandler struct {
	BaseHandler
	service *billingapp.CommitmentService
}

// NewCommitmentHandler creates a new CommitmentHandler
func NewCommitmentHandler(service *billingapp.CommitmentService) *CommitmentHandler {
	return &CommitmentHandler{service: service}
}

// ListMine returns the caller's commitments.
// GET /me/commitments
func (h *CommitmentHandler) ListMine(c *gin.Context) {
	items, err := h.service.ListMine(c.Request.Context(), h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Pause applies a hardship pause.
// POST /me/commitments/:id/pause
func (h *CommitmentHandler) Pause(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.HardshipPause(c.Request.Context(), id, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Resume ends a hardship pause.
// POST /me/commitments/:id/resume
func (h *CommitmentHandler) Resume(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Resume(c.Request.Context(), id, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
