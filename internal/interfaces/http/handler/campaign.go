package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	campaignapp "github.com/treeofhope/backend/internal/application/campaign"
)

// CampaignHandler serves campaign pages, leaves and admin campaign management
type CampaignHandler struct {
	BaseHandler
	service *campaignapp.Service
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(service *campaignapp.Service) *CampaignHandler {
	return &CampaignHandler{service: service}
}

// Create creates a draft campaign.
// POST /admin/campaigns
func (h *CampaignHandler) Create(c *gin.Context) {
	var req campaignapp.CreateCampaignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns campaigns with optional status filter.
// GET /admin/campaigns
func (h *CampaignHandler) List(c *gin.Context) {
	var filter campaignapp.CampaignListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update edits campaign copy.
// PATCH /admin/campaigns/:id
func (h *CampaignHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req campaignapp.UpdateCampaignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Publish makes a draft campaign public.
// POST /admin/campaigns/:id/publish
func (h *CampaignHandler) Publish(c *gin.Context) {
	h.changeStatus(c, h.service.Publish)
}

// Pause stops new leaves on an active campaign.
// POST /admin/campaigns/:id/pause
func (h *CampaignHandler) Pause(c *gin.Context) {
	h.changeStatus(c, h.service.Pause)
}

// Resume reactivates a paused campaign.
// POST /admin/campaigns/:id/resume
func (h *CampaignHandler) Resume(c *gin.Context) {
	h.changeStatus(c, h.service.Resume)
}

func (h *CampaignHandler) changeStatus(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*campaignapp.CampaignResponse, error)) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetLeafHidden moderates a leaf.
// PATCH /admin/leaves/:id
func (h *CampaignHandler) SetLeafHidden(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req campaignapp.SetLeafHiddenRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.SetLeafHidden(c.Request.Context(), id, *req.IsHidden)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns a campaign by slug or ID.
// GET /campaigns/:ref
func (h *CampaignHandler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.Param("ref"), h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListLeaves returns the visible leaves of a campaign.
// GET /campaigns/:ref/leaves
func (h *CampaignHandler) ListLeaves(c *gin.Context) {
	var filter campaignapp.LeafListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	leaves, err := h.service.ListLeaves(c.Request.Context(), c.Param("ref"), filter, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, leaves)
}

// SubmitLeaf posts a leaf without payment.
// POST /campaigns/:ref/leaves
func (h *CampaignHandler) SubmitLeaf(c *gin.Context) {
	var req campaignapp.SubmitLeafRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.SubmitLeaf(c.Request.Context(), c.Param("ref"), req, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Claim hands the Sanctuary to the authenticated patient.
// POST /campaigns/:ref/claim
func (h *CampaignHandler) Claim(c *gin.Context) {
	var req campaignapp.ClaimRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Claim(c.Request.Context(), c.Param("ref"), req.UserID, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
