package router

import (
	"github.com/kegledger/backend/internal/interfaces/http/handler"
)

// Handlers bundles every API handler
type Handlers struct {
	Clients   *handler.ClientHandler
	Products  *handler.ProductHandler
	Movements *handler.MovementHandler
	Inventory *handler.InventoryHandler
	System    *handler.SystemHandler
}

// Groups builds the route groups of the ledger API
func Groups(h Handlers) []RouteRegistrar {
	clients := NewDomainGroup("clients", "/clients").
		POST("", h.Clients.Create).
		GET("", h.Clients.List).
		GET("/:id", h.Clients.GetByID).
		PUT("/:id", h.Clients.Update).
		DELETE("/:id", h.Clients.Delete).
		GET("/:id/summary", h.Clients.Summary).
		GET("/:id/deletion-check", h.Clients.CanDelete).
		GET("/:id/movements", h.Movements.ListByClient)

	products := NewDomainGroup("products", "/products").
		POST("", h.Products.Create).
		GET("", h.Products.List).
		GET("/:id", h.Products.GetByID).
		PATCH("/:id", h.Products.Update).
		DELETE("/:id", h.Products.Delete).
		POST("/:id/variants", h.Products.AddVariant)

	variants := NewDomainGroup("variants", "/variants").
		PATCH("/:variant_id", h.Products.UpdateVariant).
		DELETE("/:variant_id", h.Products.DeleteVariant)

	movements := NewDomainGroup("movements", "/movements").
		POST("", h.Movements.Record).
		POST("/batches", h.Movements.RecordBatch).
		DELETE("/:id", h.Movements.Delete)

	inventory := NewDomainGroup("inventory", "/inventory").
		GET("", h.Inventory.List).
		GET("/alerts", h.Inventory.Alerts).
		GET("/drift", h.Inventory.Drift).
		POST("/rebuild", h.Inventory.RebuildAll).
		GET("/:variant_id", h.Inventory.Get).
		POST("/:variant_id/adjust", h.Inventory.Adjust).
		PUT("/:variant_id", h.Inventory.Set).
		POST("/:variant_id/rebuild", h.Inventory.Rebuild).
		PUT("/:variant_id/reorder-rule", h.Inventory.SetReorderRule).
		DELETE("/:variant_id/reorder-rule", h.Inventory.DeleteReorderRule)

	system := NewDomainGroup("system", "/health").
		GET("/live", h.System.Live).
		GET("/ready", h.System.Ready)

	return []RouteRegistrar{clients, products, variants, movements, inventory, system}
}
