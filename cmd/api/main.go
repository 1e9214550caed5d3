package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/farmanet/farmanet-api/docs" // Swagger docs
	"github.com/farmanet/farmanet-api/internal/config"
	"github.com/farmanet/farmanet-api/internal/database"
	"github.com/farmanet/farmanet-api/internal/handlers"
	"github.com/farmanet/farmanet-api/internal/jobs"
	"github.com/farmanet/farmanet-api/internal/middleware"
	"github.com/farmanet/farmanet-api/internal/repository"
	"github.com/farmanet/farmanet-api/internal/services"
	"github.com/farmanet/farmanet-api/internal/storage"
	"github.com/farmanet/farmanet-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Farmanet API
// @version 1.0
// @description REST API for Farmanet Pharmacy Accounts Payable Management
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn: cfg.SentryDSN,
			// Set TracesSampleRate to 1.0 to capture 100% of transactions for performance monitoring.
			// Set to a lower value (e.g. 0.2) in production if needed.
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured (API loads .env, not .production.env)
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set. Set them in .env and ensure the From domain is verified in Resend dashboard.")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, repos)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, store)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Redirect root to swagger
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// User management (admin only; PUT /users/:user_id is below for admin or owner)
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)
				admin.DELETE("/users/:user_id", h.User.Delete)
				admin.PUT("/users/:user_id/toggle_status", h.User.ToggleStatus)
				admin.POST("/users/:user_id/restore", h.User.Restore)

				// Supplier and branch catalogs only change under admin
				admin.DELETE("/suppliers/:supplier_id", h.Supplier.Delete)
				admin.POST("/suppliers/:supplier_id/restore", h.Supplier.Restore)
				admin.POST("/branches", h.Branch.Create)
				admin.PUT("/branches/:branch_id", h.Branch.Update)
				admin.DELETE("/branches/:branch_id", h.Branch.Delete)

				// Invoice deletion and legacy import (admin only)
				admin.DELETE("/purchases/:purchase_id", h.Purchase.Delete)
				admin.POST("/purchases/import", h.Purchase.Import)

				// Payment reversal (admin only)
				admin.POST("/payments/:payment_id/reverse", h.Payment.Reverse)

				// Bank account management (admin only)
				admin.POST("/bank_accounts", h.Bank.Create)
				admin.PUT("/bank_accounts/:account_id", h.Bank.Update)
				admin.POST("/bank_accounts/:account_id/reconcile", h.Bank.Reconcile)

				// Audits (admin can view audit logs)
				admin.GET("/audits", h.Audit.Index)
			}

			// Manager + Admin routes (registering purchases and payments)
			managerAdmin := protected.Group("")
			managerAdmin.Use(middleware.RequireRole("admin", "manager"))
			{
				// Supplier management
				managerAdmin.POST("/suppliers", h.Supplier.Create)
				managerAdmin.PUT("/suppliers/:supplier_id", h.Supplier.Update)

				// Purchase invoices
				managerAdmin.POST("/purchases", h.Purchase.Create)
				managerAdmin.PUT("/purchases/:purchase_id", h.Purchase.Update)

				// Payment registration and receipts
				managerAdmin.POST("/purchases/:purchase_id/payments", h.Payment.Register)
				managerAdmin.POST("/payments", h.Payment.Register)
				managerAdmin.POST("/payments/:payment_id/receipt", h.Payment.UploadReceipt)
			}

			// All authenticated users (read access)
			protected.GET("/users/:user_id", h.User.Show)
			protected.GET("/me", h.User.Me)

			protected.GET("/suppliers", h.Supplier.Index)
			protected.GET("/suppliers/:supplier_id", h.Supplier.Show)

			protected.GET("/branches", h.Branch.Index)
			protected.GET("/branches/:branch_id", h.Branch.Show)

			protected.GET("/purchases", h.Purchase.Index)
			protected.GET("/purchases/:purchase_id", h.Purchase.Show)
			protected.GET("/purchases/:purchase_id/payments", h.Payment.IndexByPurchase)

			protected.GET("/payments", h.Payment.Index)
			protected.GET("/payments/:payment_id", h.Payment.Show)
			protected.GET("/payments/:payment_id/receipt", h.Payment.DownloadReceipt)
			protected.GET("/payments/:payment_id/voucher_pdf", h.Payment.VoucherPDF)

			// Payables aging views
			payables := protected.Group("/payables")
			{
				payables.GET("/aging", h.Payables.Aging)
				payables.GET("/overdue", h.Payables.Overdue)
				payables.GET("/early_payment", h.Payables.EarlyPayment)
				payables.GET("/stats", h.Payables.Stats)
				payables.GET("/export", h.Payables.Export)
				payables.GET("/suppliers/:supplier_id/statement", h.Payables.SupplierStatement)
			}

			// Reports
			protected.GET("/reports/aging_csv", h.Payables.AgingCSV)
			protected.GET("/reports/overdue_csv", h.Payables.OverdueCSV)
			protected.GET("/reports/supplier_statement_pdf", h.Payables.SupplierStatementPDF)

			// Bank accounts (read access)
			protected.GET("/bank_accounts", h.Bank.Index)
			protected.GET("/bank_accounts/:account_id", h.Bank.Show)
			protected.GET("/bank_accounts/:account_id/movements", h.Bank.Movements)

			// Profile update: admin or profile owner only
			protected.PUT("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Update)
			// User can change their own password
			protected.PATCH("/users/:user_id/change_password", h.User.ChangePassword)

			// Notifications (users can manage their own notifications)
			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.POST("/:notification_id/mark_as_read", h.Notification.Update)
				notifications.GET("/:notification_id", h.Notification.Show)
				notifications.DELETE("/:notification_id", h.Notification.Delete)
			}

			// Background job status
			protected.GET("/jobs/status", h.Job.Status)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, repos *repository.Repositories) {
	// Check overdue invoices every hour
	worker.ScheduleEvery(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Checking overdue invoices...")
		return svcs.Payment.CheckOverdueInvoices(ctx, svcs.Payables)
	})

	// Daily payables digest email for active users
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Sending daily payables digest...")
		return svcs.Payment.SendDailyPayablesDigest(ctx, svcs.Payables, repos.User)
	})

	logger.Info("Scheduled recurring jobs")
}
