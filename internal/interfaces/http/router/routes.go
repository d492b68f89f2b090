package router

import (
	"github.com/treeofhope/backend/internal/interfaces/http/handler"
	"github.com/treeofhope/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the API exposes
type Handlers struct {
	System     *handler.SystemHandler
	Bridges    *handler.BridgeHandler
	Campaigns  *handler.CampaignHandler
	Checkout   *handler.CheckoutHandler
	Commitment *handler.CommitmentHandler
	Analytics  *handler.AnalyticsHandler
	Webhooks   *handler.StripeWebhookHandler
}

// Register adds the system, public, supporter, admin and webhook groups.
// Admin routes require an admin principal. Supporter routes and claim
// require authentication. Public routes attach the caller when a token is
// presented. Webhooks rely on the payload signature.
func (h Handlers) Register(r *Router, auth middleware.AuthConfig) {
	optional := middleware.OptionalAuth(auth)
	required := middleware.RequireAuth(auth)

	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)

	campaigns := NewDomainGroup("campaigns", "/campaigns").Use(optional)
	campaigns.GET("/:ref", h.Campaigns.Get)
	campaigns.GET("/:ref/leaves", h.Campaigns.ListLeaves)
	campaigns.POST("/:ref/leaves", h.Campaigns.SubmitLeaf)
	campaigns.POST("/:ref/activate", h.Checkout.Activate)
	campaigns.POST("/:ref/claim", required, h.Campaigns.Claim)

	analytics := NewDomainGroup("analytics", "/analytics").Use(optional)
	analytics.POST("/events", h.Analytics.Track)

	me := NewDomainGroup("me", "/me").Use(required)
	me.GET("/commitments", h.Commitment.ListMine)
	me.POST("/commitments/:id/pause", h.Commitment.Pause)
	me.POST("/commitments/:id/resume", h.Commitment.Resume)

	admin := NewDomainGroup("admin", "/admin").Use(middleware.RequireAdmin(auth))
	bridges := admin.Group("bridges", "/bridges")
	bridges.POST("", h.Bridges.Scout)
	bridges.GET("", h.Bridges.List)
	bridges.GET("/:id", h.Bridges.Get)
	bridges.POST("/:id/prebuild", h.Bridges.PreBuild)
	bridges.POST("/:id/skip", h.Bridges.Skip)
	bridges.PATCH("/:id/status", h.Bridges.UpdateStatus)
	bridges.POST("/:id/outreach", h.Bridges.LogOutreach)
	bridges.GET("/:id/outreach", h.Bridges.ListOutreach)

	adminCampaigns := admin.Group("campaigns", "/campaigns")
	adminCampaigns.POST("", h.Campaigns.Create)
	adminCampaigns.GET("", h.Campaigns.List)
	adminCampaigns.PATCH("/:id", h.Campaigns.Update)
	adminCampaigns.POST("/:id/publish", h.Campaigns.Publish)
	adminCampaigns.POST("/:id/pause", h.Campaigns.Pause)
	adminCampaigns.POST("/:id/resume", h.Campaigns.Resume)

	admin.Group("leaves", "/leaves").PATCH("/:id", h.Campaigns.SetLeafHidden)

	webhooks := NewDomainGroup("webhooks", "/webhooks")
	webhooks.POST("/stripe", h.Webhooks.HandleStripeWebhook)

	r.Register(system).
		Register(campaigns).
		Register(analytics).
		Register(me).
		Register(admin).
		Register(webhooks)
}
