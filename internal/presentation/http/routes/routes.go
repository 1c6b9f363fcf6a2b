package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/receipts-api/internal/config"
	domainRepo "github.com/sangkips/receipts-api/internal/domain/repository"
	"github.com/sangkips/receipts-api/internal/presentation/http/handler"
	"github.com/sangkips/receipts-api/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Receipt  *handler.ReceiptHandler
	Settings *handler.SettingsHandler
	Template *handler.TemplateHandler
	Backup   *handler.BackupHandler
	Printer  *handler.PrinterHandler
	Health   *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Users           middleware.UserResolver
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Health)

		// Public routes (no authentication required)
		registerAuthRoutes(v1, h, deps)
		registerPublicReceiptRoutes(v1, h, deps)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Users))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	auth := v1.Group("/auth")
	if deps.RateLimiter != nil {
		auth.Use(deps.RateLimiter.Middleware())
	}
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Current user
	protected.GET("/auth/me", h.Auth.Me)
	protected.PUT("/auth/me", h.Auth.UpdateMe)

	// Settings
	protected.GET("/settings", h.Settings.GetSettings)
	protected.PUT("/settings", h.Settings.UpdateSettings)

	// Receipts
	registerReceiptRoutes(protected, h, deps)

	// Templates
	registerTemplateRoutes(protected, h)

	// Backup
	registerBackupRoutes(protected, h)

	// Printer
	protected.GET("/printer/status", h.Printer.GetStatus)
}

// registerPublicReceiptRoutes serves receipt reads that work with or without a token
func registerPublicReceiptRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	receipts := v1.Group("/receipts")
	receipts.Use(middleware.OptionalAuthMiddleware(deps.Users))
	if deps.RateLimiter != nil {
		receipts.Use(deps.RateLimiter.Middleware())
	}
	receipts.GET("/next-number", h.Receipt.NextNumber)
}

func registerReceiptRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	receipts := protected.Group("/receipts")
	{
		receipts.GET("", h.Receipt.List)
		// Receipt creation replays the first response for a repeated Idempotency-Key
		receipts.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Receipt.Create)
		receipts.GET("/export.xlsx", h.Receipt.ExportXLSX)
		receipts.GET("/:id", h.Receipt.Get)
		receipts.PUT("/:id", h.Receipt.Update)
		receipts.DELETE("/:id", h.Receipt.Delete)
		receipts.GET("/:id/pdf", h.Receipt.PDF)
		receipts.POST("/:id/email", h.Receipt.Email)
		receipts.POST("/:id/print", h.Receipt.Print)
	}
}

func registerTemplateRoutes(protected *gin.RouterGroup, h *Handlers) {
	templates := protected.Group("/templates")
	{
		templates.GET("", h.Template.List)
		templates.POST("", h.Template.Create)
		templates.GET("/:id", h.Template.Get)
		templates.PUT("/:id", h.Template.Update)
		templates.DELETE("/:id", h.Template.Delete)
	}
}

func registerBackupRoutes(protected *gin.RouterGroup, h *Handlers) {
	backup := protected.Group("/backup")
	{
		backup.GET("/export", h.Backup.Export)
		backup.POST("/import", h.Backup.Import)
	}
}
