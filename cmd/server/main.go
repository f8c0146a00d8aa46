package main

import (
	"log"

	"github.com/avolkov/forum/internal/config"
	"github.com/avolkov/forum/internal/database"
	"github.com/avolkov/forum/internal/handler"
	"github.com/avolkov/forum/internal/middleware"
	"github.com/avolkov/forum/internal/repository"
	"github.com/avolkov/forum/internal/service"
	"github.com/avolkov/forum/internal/utils"
	"github.com/avolkov/forum/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction(), logger.FileConfig{
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	tokenStore := utils.NewTokenStore(redisClient)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, tokenStore, cfg.JWTSecret, cfg.JWTExpiry)
	forumService := service.NewForumService(topicRepo, commentRepo, categoryRepo, userRepo, cfg.PageSize)
	categoryService := service.NewCategoryService(categoryRepo, topicRepo, userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	topicHandler := handler.NewTopicHandler(forumService)
	commentHandler := handler.NewCommentHandler(forumService)
	categoryHandler := handler.NewCategoryHandler(categoryService, forumService)
	adminHandler := handler.NewAdminHandler(authService)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))
	router.Use(rateLimiter.Middleware())

	// Public routes
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)
	router.GET("/api/topics", topicHandler.List)
	router.GET("/api/topics/:id", topicHandler.Get)
	router.GET("/api/comments/:id/locate", commentHandler.Locate)
	router.GET("/api/categories", categoryHandler.List)
	router.GET("/api/categories/:id/topics", categoryHandler.Topics)

	// Authenticated routes
	auth := router.Group("/api")
	auth.Use(middleware.AuthMiddleware(cfg.JWTSecret, tokenStore))
	{
		auth.POST("/auth/logout", authHandler.Logout)
		auth.GET("/auth/me", authHandler.Me)

		auth.POST("/topics", topicHandler.Create)
		auth.PUT("/topics/:id", topicHandler.Edit)
		auth.DELETE("/topics/:id", topicHandler.Delete)
		auth.POST("/topics/:id/comments", topicHandler.CreateComment)

		auth.PUT("/comments/:id", commentHandler.Edit)
		auth.DELETE("/comments/:id", commentHandler.Delete)
	}

	// Admin routes
	admin := router.Group("/api")
	admin.Use(middleware.AuthMiddleware(cfg.JWTSecret, tokenStore), middleware.AdminMiddleware())
	{
		admin.POST("/topics/:id/pin", topicHandler.Pin)
		admin.POST("/topics/:id/lock", topicHandler.Lock)

		admin.POST("/categories", categoryHandler.Create)
		admin.PUT("/categories/:id", categoryHandler.Edit)
		admin.DELETE("/categories/:id", categoryHandler.Delete)
		admin.POST("/categories/:id/lock", categoryHandler.Lock)

		admin.GET("/admin/users", adminHandler.ListUsers)
		admin.PUT("/admin/users/:id/role", adminHandler.SetRole)
		admin.DELETE("/admin/users/:id", adminHandler.DeleteUser)
	}

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
