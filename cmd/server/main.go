package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/mercadito/backend/internal/config"
	"github.com/mercadito/backend/internal/handlers"
	appMiddleware "github.com/mercadito/backend/internal/middleware"
	"github.com/mercadito/backend/internal/services"
	"github.com/mercadito/backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer pool.Close()

	// Initialize services
	accountService := services.NewAccountService(pool)
	shopService := services.NewShopService(pool)
	voteService := services.NewVoteService(pool)

	blobStore, err := buildBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("init blob store: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accountService, cfg.JWTSecret, cfg.JWTExpiration)
	shopHandler := handlers.NewShopHandler(shopService, blobStore, cfg.MaxUploadSizeMB)
	voteHandler := handlers.NewVoteHandler(voteService, shopService)
	adminHandler := handlers.NewAdminHandler(shopService)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Public listing; viewer decoration when a token is supplied
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.OptionalJWTAuth(cfg.JWTSecret))
			r.Get("/shops", shopHandler.ListShops)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			r.Get("/auth/me", authHandler.GetProfile)
			r.Post("/shops", shopHandler.CreateShop)
			r.Post("/shops/{shopId}/vote", voteHandler.CastVote)
			r.Get("/votes/mine", voteHandler.MyVotes)

			// Moderation; admin flag re-checked per request
			r.Route("/admin", func(r chi.Router) {
				r.Use(appMiddleware.RequireAdmin(accountService))

				r.Get("/shops/pending", adminHandler.ListPending)
				r.Get("/shops/rejected", adminHandler.ListRejected)
				r.Get("/shops/approved", adminHandler.ListApproved)
				r.Post("/shops/{shopId}/approve", adminHandler.Approve)
				r.Post("/shops/{shopId}/reject", adminHandler.Reject)
				r.Post("/shops/{shopId}/unapprove", adminHandler.Unapprove)
				r.Post("/shops/{shopId}/restore", adminHandler.Restore)
			})
		})
	})

	// Serve locally uploaded files when the disk store is in use
	if cfg.GCSBucket == "" {
		workDir, _ := os.Getwd()
		filesDir := http.Dir(workDir + "/" + cfg.UploadDir)
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(filesDir)))
	}

	log.Printf("mercadito API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func buildBlobStore(ctx context.Context, cfg *config.Config) (services.BlobStore, error) {
	if cfg.GCSBucket == "" {
		return services.NewLocalBlobStore(cfg.UploadDir)
	}

	var screener *services.SafeSearchScreener
	if cfg.SafeSearchEnabled {
		screener = services.NewSafeSearchScreener()
	}
	return services.NewGCSBlobStore(ctx, cfg.GCSBucket, screener)
}
