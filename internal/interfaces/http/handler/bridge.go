package handler

import (
	"github.com/gin-gonic/gin"
	bridgeapp "github.com/treeofhope/backend/internal/application/bridge"
)

// BridgeHandler serves the admin bridge pipeline
type BridgeHandler struct {
	BaseHandler
	service *bridgeapp.Service
}

// NewBridgeHandler creates a new BridgeHandler
func NewBridgeHandler(service *bridgeapp.Service) *BridgeHandler {
	return &BridgeHandler{service: service}
}

// Scout records an external fundraiser.
// POST /admin/bridges
func (h *BridgeHandler) Scout(c *gin.Context) {
	var req bridgeapp.ScoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Scout(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns bridge records, newest first.
// GET /admin/bridges
func (h *BridgeHandler) List(c *gin.Context) {
	var filter bridgeapp.BridgeListFilter
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

// Get returns one bridge record.
// GET /admin/bridges/:id
func (h *BridgeHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PreBuild generates the draft campaign with its welcome leaves.
// POST /admin/bridges/:id/prebuild
func (h *BridgeHandler) PreBuild(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req bridgeapp.PreBuildRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.PreBuild(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Skip passes on a scouted record.
// POST /admin/bridges/:id/skip
func (h *BridgeHandler) Skip(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req bridgeapp.SkipRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Skip(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateStatus applies a manual pipeline transition.
// PATCH /admin/bridges/:id/status
func (h *BridgeHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req bridgeapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// LogOutreach appends an outreach entry.
// POST /admin/bridges/:id/outreach
func (h *BridgeHandler) LogOutreach(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req bridgeapp.LogOutreachRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.LogOutreach(c.Request.Context(), id, req, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListOutreach returns the outreach history of a bridge.
// GET /admin/bridges/:id/outreach
func (h *BridgeHandler) ListOutreach(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.service.ListOutreach(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
