// main.go - Reel Episodes Backend
package main

import (
	"log"
	"strings"
	"sync"
	"time"

	"reelbe/internal/config"
	"reelbe/internal/database"
	"reelbe/internal/handlers"
	"reelbe/internal/middleware"
	"reelbe/internal/services"
	"reelbe/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Environment)

	// Initialize database connection
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Firebase service
	firebaseService, err := services.NewFirebaseService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Firebase service:", err)
	}

	// Initialize R2 storage
	r2Client, err := storage.NewR2Client(cfg.R2Config)
	if err != nil {
		log.Fatal("Failed to initialize R2 client:", err)
	}

	// Initialize services
	episodeService := services.NewEpisodeService(db)
	reelService := services.NewReelService(db)
	userService := services.NewUserService(db)
	uploadService := services.NewUploadService(r2Client)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(firebaseService, userService)
	episodeHandler := handlers.NewEpisodeHandler(episodeService, uploadService)
	reelHandler := handlers.NewReelHandler(reelService)

	// Initialize rate limiter
	rateLimiter := NewRateLimiter()

	// Setup router
	router := setupRouter(cfg, rateLimiter)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		dbStats := database.Stats()

		c.JSON(200, gin.H{
			"status":   "healthy",
			"database": database.Health() == nil,
			"app":      "reel-episodes-backend",
			"database_stats": gin.H{
				"open_connections": dbStats.OpenConnections,
				"in_use":           dbStats.InUse,
				"idle":             dbStats.Idle,
			},
		})
	})

	// Setup routes
	setupRoutes(router, firebaseService, authHandler, reelHandler, episodeHandler)

	// Start server
	port := cfg.Port
	log.Printf("🚀 Reel Episodes Server starting on port %s", port)
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("🔥 Firebase service initialized")
	log.Printf("☁️  R2 storage initialized")

	log.Fatal(router.Run(":" + port))
}

func setupRouter(cfg *config.Config, rateLimiter *RateLimiter) *gin.Engine {
	router := gin.Default()

	// GZIP compression, video payloads excluded
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{
		".mp4", ".avi", ".mov", ".webm", ".mkv"})))

	// Rate limiting
	router.Use(createRateLimitMiddleware(rateLimiter))

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			"Range", "Accept-Ranges",
			"Cache-Control", "If-None-Match", "If-Modified-Since",
		},
		ExposeHeaders: []string{
			"Content-Length", "Content-Range", "Accept-Ranges",
			"Cache-Control", "Last-Modified", "ETag",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Next()
	})

	return router
}

func setupRoutes(
	router *gin.Engine,
	firebaseService *services.FirebaseService,
	authHandler *handlers.AuthHandler,
	reelHandler *handlers.ReelHandler,
	episodeHandler *handlers.EpisodeHandler,
) {
	api := router.Group("/api/v1")

	// ===============================
	// PUBLIC ROUTES
	// ===============================
	public := api.Group("")
	{
		public.GET("/reels", reelHandler.GetReels)
		public.GET("/reels/:reelId", reelHandler.GetReel)

		// Public listing only surfaces approved episodes of approved reels
		public.GET("/reels/:reelId/episodes", episodeHandler.GetApprovedReelEpisodes)
		public.GET("/episodes/:episodeId", episodeHandler.GetEpisode)
	}

	// ===============================
	// PROTECTED ROUTES
	// ===============================
	protected := api.Group("")
	protected.Use(middleware.FirebaseAuth(firebaseService))
	{
		// ===== AUTH =====
		protected.POST("/auth/sync", authHandler.SyncUser)
		protected.GET("/auth/user", authHandler.GetCurrentUser)

		// ===== REELS =====
		protected.POST("/reels", reelHandler.CreateReel)
		protected.GET("/reels/:reelId/episodes/all", episodeHandler.GetReelEpisodes)

		// ===== EPISODES =====
		protected.POST("/reels/:reelId/episodes", episodeHandler.CreateEpisode)
		protected.PUT("/episodes/:episodeId", episodeHandler.UpdateEpisode)

		// ===== ENGAGEMENT =====
		protected.POST("/episodes/:episodeId/like", episodeHandler.ToggleLike)
		protected.POST("/episodes/:episodeId/save", episodeHandler.ToggleSave)
		protected.GET("/episodes/:episodeId/liked", episodeHandler.HasLiked)
		protected.GET("/episodes/:episodeId/saved", episodeHandler.HasSaved)
		protected.GET("/episodes/saved", episodeHandler.GetSavedEpisodes)

		// ===== PAYWALL =====
		protected.POST("/episodes/:episodeId/unlock", episodeHandler.UnlockEpisode)
		protected.GET("/episodes/:episodeId/access", episodeHandler.HasAccess)

		// ===============================
		// ADMIN ROUTES
		// ===============================
		admin := protected.Group("")
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("/admin/episodes", episodeHandler.GetAllEpisodes)
			admin.DELETE("/episodes/:episodeId", episodeHandler.DeleteEpisode)
			admin.POST("/episodes/:episodeId/status", episodeHandler.UpdateEpisodeStatus)
			admin.POST("/admin/reels/:reelId/status", reelHandler.UpdateReelStatus)
		}
	}
}

// Simple per-IP rate limiter
type RateLimiter struct {
	visitors map[string]*Visitor
	mutex    sync.RWMutex
}

type Visitor struct {
	requests int
	lastSeen time.Time
}

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*Visitor),
	}
	go rl.cleanupRoutine()
	return rl
}

func (rl *RateLimiter) Allow(ip string, limit int, window time.Duration) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	visitor, exists := rl.visitors[ip]
	now := time.Now()

	if !exists || now.Sub(visitor.lastSeen) > window {
		rl.visitors[ip] = &Visitor{
			requests: 1,
			lastSeen: now,
		}
		return true
	}

	if visitor.requests >= limit {
		return false
	}

	visitor.requests++
	visitor.lastSeen = now
	return true
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		rl.cleanup()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, visitor := range rl.visitors {
		if visitor.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

func createRateLimitMiddleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		path := c.Request.URL.Path

		var limit int
		window := time.Minute

		if strings.Contains(path, "/episodes") {
			limit = 100
		} else if strings.Contains(path, "/reels") {
			limit = 100
		} else {
			limit = 200
		}

		if !rateLimiter.Allow(ip, limit, window) {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "60")

			c.JSON(429, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
				"limit":   limit,
				"window":  window.String(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
