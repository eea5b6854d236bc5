// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/otoworks/otowork-backend/internal/api/handlers"
	"github.com/otoworks/otowork-backend/internal/api/middleware"
	"github.com/otoworks/otowork-backend/internal/config"
	"github.com/otoworks/otowork-backend/internal/cron"
	"github.com/otoworks/otowork-backend/internal/db"
	"github.com/otoworks/otowork-backend/internal/email"
	"github.com/otoworks/otowork-backend/internal/ledger"
	"github.com/otoworks/otowork-backend/internal/notification"
	"github.com/otoworks/otowork-backend/internal/payment"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/seed"
	"github.com/otoworks/otowork-backend/internal/service"
	"github.com/otoworks/otowork-backend/internal/socket"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("🔄 Running database migrations...")
	migrationsPath := "./internal/db/migrations"
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// ============================================
	// Initialize PostgreSQL (pgxpool + sqlx)
	// ============================================
	postgres, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()
	log.Println("✅ Connected to PostgreSQL")

	// ============================================
	// Initialize Repositories
	// ============================================
	repos := repository.NewRepositories(postgres.Pool, postgres.SQLX)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without cache)", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
			log.Println("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		log.Println("📧 Email service initialized")
	} else {
		log.Println("⚠️  Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize Fee Schedule
	// ============================================
	schedule, err := ledger.NewSchedule(cfg.PlatformFeeRatePct, cfg.TaxRatePct)
	if err != nil {
		log.Fatalf("❌ Invalid fee schedule: %v", err)
	}
	log.Printf("💴 Fee schedule loaded (platform %s%%, tax %s%%)", cfg.PlatformFeeRatePct, cfg.TaxRatePct)

	// ============================================
	// Initialize Payment Gateway
	// ============================================
	var gateway payment.Gateway
	if cfg.GatewayURL != "" {
		gateway = payment.NewHTTPGateway(payment.Config{
			URL:     cfg.GatewayURL,
			APIKey:  cfg.GatewayAPIKey,
			Timeout: time.Duration(cfg.GatewayTimeout) * time.Second,
		})
		log.Println("💳 Payment gateway configured")
	} else {
		gateway = payment.NewMemoryGateway()
		log.Println("⚠️  Using in-memory payment gateway (GATEWAY_URL not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	// WebSocket handler with JWT secret for self-authentication
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		log.Println("🌱 Seeding development data...")
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize Notification Service
	// ============================================
	notificationSvc := notification.NewService(repos.NotificationRepo)
	notificationSvc.SetBroadcaster(broadcaster)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		Schedule:    schedule,
		Gateway:     gateway,
		NotifSvc:    notificationSvc,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
		Redis:       redisDB,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services, redisDB)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(
		services,
		notificationSvc,
		repos.ProjectRepo,
		repos.EscrowRepo,
		repos.ProposalRepo,
		repos.NotificationRepo,
	)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      getCacheStatus(redisDB),
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
			"email":      getEmailStatus(emailSvc),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Payout processor callbacks (shared-secret auth)
		webhooks := api.Group("/webhooks")
		webhooks.Use(middleware.WebhookAuth(cfg.PayoutWebhookSecret))
		{
			webhooks.POST("/payouts", h.Webhook.PayoutCallback)
		}

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// Public project browsing
		api.GET("/projects", h.Project.List)
		api.GET("/projects/:id", h.Project.Get)

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/me", h.Auth.GetCurrentUser)
			}

			// Project routes
			projects := protected.Group("/projects")
			{
				projects.POST("", h.Project.Create)
				projects.PUT("/:id", h.Project.Update)
				projects.POST("/:id/publish", h.Project.Publish)
				projects.GET("/:id/proposals", h.Proposal.ListByProject)
				projects.GET("/:id/escrow", h.Escrow.GetByProject)
				projects.POST("/:id/deliveries", h.Project.SubmitDelivery)
			}

			// Proposal routes
			proposals := protected.Group("/proposals")
			{
				proposals.POST("", h.Proposal.Submit)
				proposals.GET("/my", h.Proposal.ListMine)
				proposals.GET("/:id", h.Proposal.Get)
				proposals.POST("/:id/accept", h.Proposal.Accept)
				proposals.POST("/:id/reject", h.Proposal.Reject)
			}

			// Escrow routes
			escrows := protected.Group("/escrows")
			{
				escrows.POST("/quote", h.Escrow.Quote)
				escrows.GET("/:id", h.Escrow.Get)
				escrows.POST("/:id/release", h.Escrow.Release)
				escrows.POST("/:id/refund", h.Escrow.Refund)
			}

			// Withdrawal routes
			withdrawals := protected.Group("/withdrawals")
			{
				withdrawals.POST("", h.Withdrawal.Create)
				withdrawals.GET("", h.Withdrawal.List)
				withdrawals.GET("/balance", h.Withdrawal.GetBalance)
				withdrawals.GET("/:id", h.Withdrawal.Get)
			}

			// Earnings routes
			earnings := protected.Group("/earnings")
			{
				earnings.GET("/summary", h.Earnings.Summary)
				earnings.GET("/history", h.Earnings.History)
			}

			// Message routes
			messages := protected.Group("/messages")
			{
				messages.POST("", h.Message.Send)
				messages.GET("/conversations", h.Message.ListConversations)
				messages.GET("/conversations/:peerId", h.Message.GetThread)
				messages.PUT("/conversations/:peerId/read", h.Message.MarkRead)
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
			}
		}
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getCacheStatus(redisDB *db.RedisDB) string {
	if redisDB != nil {
		return "connected"
	}
	return "disabled"
}

func getEmailStatus(emailSvc *email.Service) string {
	if emailSvc != nil {
		return "configured"
	}
	return "disabled"
}
