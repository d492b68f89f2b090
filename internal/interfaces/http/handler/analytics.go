package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	analyticsapp "github.com/treeofhope/backend/internal/application/analytics"
)

// AnalyticsHandler records client page events
type AnalyticsHandler struct {
	BaseHandler
	tracker *analyticsapp.Tracker
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(tracker *analyticsapp.Tracker) *AnalyticsHandler {
	return &AnalyticsHandler{tracker: tracker}
}

// Track stores one client event.
// POST /analytics/events
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var req analyticsapp.TrackEventRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.tracker.RecordClientEvent(c.Request.Context(), req, h.actor(c).UserIDPtr()); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
