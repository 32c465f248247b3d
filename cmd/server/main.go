// Package main is the entry point for the municipal complaint portal server.
// It provides a REST API for complaint submission, triage, notifications,
// and public statistics.
//
// Architecture:
//   - Citizens file complaints (optionally with coordinates and a photo)
//   - The lifecycle engine is the only writer of complaint status; every
//     effective transition commits the row update and its audit-trail entry
//     in one transaction, then notifies the owner
//   - Queries are role-scoped: users see their own rows, admins see all
//   - A Merkle tree over the audit ledger is published for tamper detection
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicfix/portal-server/internal/blobstore"
	"github.com/civicfix/portal-server/internal/config"
	"github.com/civicfix/portal-server/internal/database"
	"github.com/civicfix/portal-server/internal/handlers"
	"github.com/civicfix/portal-server/internal/middleware"
	"github.com/civicfix/portal-server/internal/services"
	"github.com/civicfix/portal-server/internal/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting municipal portal server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"storage", cfg.StorageBackend,
	)

	ctx := context.Background()

	// Apply schema migrations, then open the serving pool
	if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
		sugar.Fatalf("Failed to migrate database: %v", err)
	}
	db, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Optional Redis client for shared rate limiting
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			sugar.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
	}

	// Image storage backend
	var blobs blobstore.Store
	var diskStore *blobstore.Disk
	switch cfg.StorageBackend {
	case "s3":
		blobs, err = blobstore.NewS3(ctx, blobstore.S3Options{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			sugar.Fatalf("Failed to init S3 storage: %v", err)
		}
	default:
		diskStore, err = blobstore.NewDisk(cfg.UploadDir)
		if err != nil {
			sugar.Fatalf("Failed to init upload dir: %v", err)
		}
		blobs = diskStore
	}

	// Initialize stores and services
	repos := store.NewPostgresRegistry()
	txm := store.NewManager(db)

	notificationSvc := services.NewNotificationService(db, repos, sugar)
	lifecycleSvc := services.NewLifecycleService(db, txm, repos, notificationSvc, sugar)
	querySvc := services.NewQueryService(db, repos, sugar)
	accountSvc := services.NewAccountService(db, repos, []byte(cfg.JWTSecret),
		time.Duration(cfg.TokenTTLHours)*time.Hour, sugar)
	ledgerSvc := services.NewLedgerService(sugar)
	integrityWorker := services.NewIntegrityWorker(ledgerSvc, db, repos, sugar)

	// Bootstrap admin account
	if err := accountSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		sugar.Fatalf("Failed to ensure admin account: %v", err)
	}

	// Start background integrity worker (rebuilds the ledger tree periodically)
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go integrityWorker.Start(workerCtx, time.Duration(cfg.LedgerRebuildMinutes)*time.Minute)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accountSvc, sugar)
	complaintHandler := handlers.NewComplaintHandler(lifecycleSvc, querySvc, blobs, cfg.MaxUploadBytes, sugar)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc, sugar)
	statsHandler := handlers.NewStatsHandler(querySvc, sugar)
	integrityHandler := handlers.NewIntegrityHandler(ledgerSvc, sugar)
	healthHandler := handlers.NewHealthHandler(db, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(rdb, cfg.RateLimitRPM))

	requireAuth := middleware.RequireAuth([]byte(cfg.JWTSecret))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		// Account endpoints (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Complaint endpoints
		r.Route("/complaints", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", complaintHandler.Submit)
			r.Get("/", complaintHandler.List)
			r.Get("/{id}", complaintHandler.Get)
			r.Get("/{id}/history", complaintHandler.History)
			r.Patch("/{id}", complaintHandler.Transition) // admin, enforced by the engine
		})

		// Notification inbox
		r.Route("/notifications", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", notificationHandler.List)
			r.Post("/{id}/read", notificationHandler.MarkRead)
		})

		// Admin statistics
		r.With(requireAuth, middleware.RequireAdmin()).Get("/stats", statsHandler.Admin)

		// Public transparency endpoints (no auth)
		r.Get("/public/overview", statsHandler.PublicOverview)

		// Integrity endpoints (audit-ledger Merkle tree)
		r.Route("/integrity", func(r chi.Router) {
			r.Get("/root", integrityHandler.GetRoot)
			r.Get("/proof/{index}", integrityHandler.GetProof)
			r.Post("/verify", integrityHandler.Verify)
		})
	})

	// Serve uploaded images when using disk storage
	if diskStore != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/",
			http.FileServer(http.Dir(diskStore.Dir()))))
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
