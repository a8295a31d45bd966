// Package router assembles the HTTP surface: middleware chain and the
// versioned API route table.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/storelink/backend/internal/infrastructure/logger"
	"github.com/storelink/backend/internal/interfaces/http/handler"
	"github.com/storelink/backend/internal/interfaces/http/middleware"
)

const defaultMaxBodyBytes = 4 << 20 // bulk sync payloads stay well under this

// Config holds router-level options
type Config struct {
	ServiceName  string
	CORS         middleware.CORSConfig
	MaxBodyBytes int64
	// Tracing toggles the otelgin middleware; spans are no-ops unless a
	// tracer provider was registered.
	Tracing bool
}

// Handlers bundles the API handlers the router mounts
type Handlers struct {
	Sync         *handler.SyncHandler
	Destination  *handler.DestinationHandler
	Notification *handler.NotificationHandler
	System       *handler.SystemHandler
}

// New builds the gin engine with the full middleware chain and route table
func New(log *zap.Logger, cfg Config, h Handlers) *gin.Engine {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "storelink-backend"
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if cfg.Tracing {
		engine.Use(otelgin.Middleware(cfg.ServiceName))
	}
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	api := engine.Group("/api/v1")

	if h.System != nil {
		system := api.Group("/system")
		system.GET("/ping", h.System.Ping)
		system.GET("/health", h.System.Health)
		system.GET("/info", h.System.GetSystemInfo)
	}

	dist := api.Group("/distribution")
	if h.Sync != nil {
		dist.POST("/sync", h.Sync.SyncProduct)
		dist.POST("/sync/bulk", h.Sync.BulkSync)
		dist.POST("/sync/products", h.Sync.BulkSyncProducts)
		dist.GET("/products/:id/status", h.Sync.GetSyncStatus)
		dist.POST("/assignments/propose", h.Sync.ProposeAssignment)
		dist.PUT("/overrides", h.Sync.SetOverride)
	}
	if h.Destination != nil {
		dist.POST("/destinations", h.Destination.Connect)
		dist.GET("/destinations", h.Destination.List)
		dist.GET("/destinations/:id", h.Destination.Get)
		dist.DELETE("/destinations/:id", h.Destination.Disconnect)
	}

	if h.Notification != nil {
		notifications := api.Group("/notifications")
		notifications.GET("", h.Notification.List)
		notifications.GET("/unread-count", h.Notification.UnreadCount)
		notifications.POST("/:id/read", h.Notification.MarkRead)
		notifications.POST("/:id/unread", h.Notification.MarkUnread)
		notifications.DELETE("/:id", h.Notification.Delete)
	}

	return engine
}
