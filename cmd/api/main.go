package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dreamportal/internal/config"
	"dreamportal/internal/database"
	"dreamportal/internal/gateway"
	"dreamportal/internal/handlers"
	"dreamportal/internal/logger"
	"dreamportal/internal/middleware"
	"dreamportal/internal/services"
	"dreamportal/internal/storage"
	"dreamportal/internal/sync"
	"dreamportal/internal/validator"

	_ "dreamportal/internal/docs" // Import swagger docs
)

// @title           Dream Portal API
// @version         1.0
// @description     Dream Portal is a shared goal-tracking portal for couples: a dream checklist, a shared calendar, savings milestones, and a customizable theme, synchronized live between both partners.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	// Pick the persistence backend: Postgres plus a Redis change feed, or
	// on-disk documents with an in-process feed.
	var (
		dbManager *database.Manager
		feed      gateway.Feed
		gw        gateway.Gateway
	)
	switch appConfig.Backend {
	case config.BackendLocal:
		dbManager, err = database.NewLocalManager(appConfig.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open local database: %w", err)
		}
		feed = gateway.NewMemoryFeed()
		gw, err = gateway.NewLocalGateway(filepath.Join(appConfig.DataDir, "portal"), feed)
		if err != nil {
			return fmt.Errorf("failed to create local gateway: %w", err)
		}
		log.Infow("using local backend", "data_dir", appConfig.DataDir)

	default:
		dbManager, err = database.NewManager(database.NewConfig(appConfig))
		if err != nil {
			return fmt.Errorf("failed to create database manager: %w", err)
		}
		if err := dbManager.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		redisClient := redis.NewClient(&redis.Options{Addr: appConfig.RedisAddr})
		feed = gateway.NewRedisFeed(redisClient)
		gw = gateway.NewRemoteGateway(dbManager.DB(), feed)
		log.Infow("using remote backend", "redis", appConfig.RedisAddr)
	}

	assetStore, err := storage.NewStore(appConfig.AssetDir, appConfig.AssetBaseURL, appConfig.AssetMaxBytes)
	if err != nil {
		return fmt.Errorf("failed to create asset store: %w", err)
	}

	sessions := sync.NewManager(gw)
	defer sessions.Shutdown()

	// Services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db, gw, assetStore, sessions)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, sessions)
	accountHandler := handlers.NewAccountHandler(accountService)
	portalHandler := handlers.NewPortalHandler(sessions)
	assetHandler := handlers.NewAssetHandler(assetStore)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploaded images
	router.Static(appConfig.AssetBaseURL, assetStore.Dir())

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.DELETE("/account", accountHandler.DeleteAccount)

	portal := protected.Group("/portal")
	portal.GET("", portalHandler.GetPortal)
	portal.POST("/refresh", portalHandler.Refresh)
	portal.GET("/metrics", portalHandler.GetMetrics)

	portal.POST("/items", portalHandler.CreateItem)
	portal.PATCH("/items/:id", portalHandler.UpdateItem)
	portal.DELETE("/items/:id", portalHandler.DeleteItem)

	portal.POST("/events", portalHandler.CreateEvent)
	portal.DELETE("/events/:id", portalHandler.DeleteEvent)

	portal.PUT("/settings/theme", portalHandler.UpdateTheme)
	portal.PUT("/settings/savings", portalHandler.UpdateSavings)
	portal.PUT("/settings/levels", portalHandler.UpdateLevels)

	portal.POST("/assets", assetHandler.Upload)
	portal.DELETE("/assets", assetHandler.Delete)

	// Close sync sessions cleanly on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("shutting down")
		sessions.Shutdown()
		logger.Sync()
		os.Exit(0)
	}()

	log.Infof("Starting Dream Portal backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
