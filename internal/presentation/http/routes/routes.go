package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevani/pos-api/internal/config"
	domainRepo "github.com/sanjeevani/pos-api/internal/domain/repository"
	"github.com/sanjeevani/pos-api/internal/presentation/http/handler"
	"github.com/sanjeevani/pos-api/internal/presentation/http/middleware"
	"github.com/sanjeevani/pos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Customer  *handler.CustomerHandler
	Inventory *handler.InventoryHandler
	Billing   *handler.BillingHandler
	Receipt   *handler.ReceiptHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-operator rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Operator management (admin only)
	users := rg.Group("/users")
	users.Use(middleware.RequireAdmin())
	{
		users.POST("", h.Auth.CreateOperator)
	}

	// Profile
	profile := rg.Group("/profile")
	{
		profile.GET("", h.Auth.Profile)
		profile.POST("/change-password", h.Auth.ChangePassword)
	}

	// Inventory lookups for the till
	inventory := rg.Group("/inventory")
	{
		inventory.GET("/products/search", h.Inventory.SearchProducts)
		inventory.GET("/batches", h.Inventory.ListBatches)
	}

	// Billing
	billing := rg.Group("/billing")
	{
		customers := billing.Group("/customers")
		{
			customers.GET("/search", h.Customer.Search)
			customers.GET("", h.Customer.List)
			customers.GET("/:id", h.Customer.Get)
			customers.POST("", h.Customer.Create)
		}

		session := billing.Group("/session")
		{
			session.GET("", h.Billing.GetSession)
			session.POST("/items", h.Billing.AddItem)
			session.PUT("/items/:batchId", h.Billing.UpdateItemQty)
			session.DELETE("/items/:batchId", h.Billing.RemoveItem)
			session.PUT("/customer", h.Billing.SetCustomer)
			session.DELETE("/customer", h.Billing.DetachCustomer)
			session.PUT("/reference", h.Billing.SetReference)
			session.DELETE("/reference", h.Billing.ClearReference)
			session.POST("/payments", h.Billing.AddPayment)
			session.DELETE("/payments/:index", h.Billing.RemovePayment)
			session.DELETE("", h.Billing.ResetSession)
			session.POST("/submit", middleware.Idempotency(deps.IdempotencyRepo), h.Billing.SubmitSession)
		}

		invoices := billing.Group("/invoices")
		{
			invoices.POST("", middleware.IdempotencyRequired(deps.IdempotencyRepo), h.Billing.CreateInvoice)
			invoices.GET("", h.Billing.ListInvoices)
			invoices.GET("/:id", h.Billing.GetInvoice)
			invoices.POST("/:id/print", h.Receipt.PrintInvoice)
		}
	}

	// Printer
	rg.GET("/printer/status", h.Receipt.PrinterStatus)
}
