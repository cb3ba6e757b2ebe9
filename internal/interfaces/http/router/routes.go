package router

import (
	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/interfaces/http/handler"
	"github.com/comufarm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the marketplace API handlers. Auth is optional.
type Handlers struct {
	Products  *handler.ProductHandler
	Orders    *handler.OrderHandler
	Feedback  *handler.FeedbackHandler
	Supplies  *handler.SupplyHandler
	Changes   *handler.ChangeFeedHandler
	System    *handler.SystemHandler
	Auth      *handler.AuthHandler
	PartyAuth gin.HandlerFunc
	// WriteLimit guards state-changing routes; nil disables it
	WriteLimit gin.HandlerFunc
}

// MarketplaceGroups builds the route groups of the marketplace API
func MarketplaceGroups(h Handlers) []*DomainGroup {
	write := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if h.WriteLimit == nil {
			return handlers
		}
		return append([]gin.HandlerFunc{h.WriteLimit}, handlers...)
	}
	farmer := middleware.RequireRole(marketplace.SenderFarmer)
	company := middleware.RequireRole(marketplace.SenderCompany)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)
	health := NewDomainGroup("health", "").
		GET("/health", h.System.Health)

	products := NewDomainGroup("products", "/products").Use(h.PartyAuth).
		GET("", h.Products.List).
		GET("/available", h.Products.ListAvailable).
		GET("/:id", h.Products.GetByID).
		GET("/:id/check", h.Products.CheckOrder).
		POST("", write(farmer, h.Products.Create)...)

	orders := NewDomainGroup("orders", "/orders").Use(h.PartyAuth).
		GET("", h.Orders.List).
		POST("", write(company, h.Orders.Place)...).
		GET("/:id/feedbacks", h.Feedback.Thread).
		POST("/:id/feedbacks", write(h.Feedback.Append)...)

	supplies := NewDomainGroup("supplies", "/supplies").Use(h.PartyAuth, farmer).
		GET("", h.Supplies.List).
		POST("/export", write(h.Supplies.Export)...)

	changes := NewDomainGroup("changes", "/changes").Use(h.PartyAuth).
		GET("/stream", h.Changes.Stream).
		GET("/ws", h.Changes.WebSocket)

	groups := []*DomainGroup{system, health, products, orders, supplies, changes}
	if h.Auth != nil {
		groups = append(groups, NewDomainGroup("auth", "/auth").POST("/token", write(h.Auth.IssueToken)...))
	}
	return groups
}

// RegisterMarketplace mounts the marketplace API on r
func RegisterMarketplace(r *Router, h Handlers) {
	for _, group := range MarketplaceGroups(h) {
		r.Register(group)
	}
}
