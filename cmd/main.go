package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"homestock/internal/caching"
	"homestock/internal/config"
	"homestock/internal/handlers"
	"homestock/internal/jobs"
	"homestock/internal/jobs/background"
	"homestock/internal/middleware"
	"homestock/internal/repositories"
	"homestock/internal/services"
	"homestock/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stderrLogger := zerolog.New(os.Stderr)
		stderrLogger.Fatal().Err(err).Msg("config load failed")
	}
	logger := config.NewLogger(cfg.Log)

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	cacheService := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)

	minioService, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		logger.Fatal().Err(err).Msg("minio connection failed")
	}
	if err := minioService.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
		logger.Fatal().Err(err).Msg("bucket setup failed")
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	locationRepo := repositories.NewLocationRepo(pool)
	itemRepo := repositories.NewItemRepo(pool)
	photoRepo := repositories.NewItemPhotoRepo(pool)
	activityRepo := repositories.NewActivityRepo(pool)

	// Services
	authService := services.NewAuthService(userRepo, cacheService, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, logger)
	locationService := services.NewLocationService(locationRepo, photoRepo, activityRepo, minioService, cacheService, cfg.Minio.Bucket, logger)
	itemService := services.NewItemService(itemRepo, locationRepo, photoRepo, activityRepo, minioService, cacheService, cfg.Minio.Bucket, logger)
	photoService := services.NewPhotoService(photoRepo, itemRepo, activityRepo, minioService, cfg.Minio.Bucket, logger)
	statsService := services.NewStatsService(locationRepo, itemRepo, cacheService, logger)
	activityService := services.NewActivityService(activityRepo)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	locationHandlers := handlers.NewLocationHandlers(locationService)
	itemHandlers := handlers.NewItemHandlers(itemService)
	photoHandlers := handlers.NewPhotoHandlers(photoService)
	statsHandlers := handlers.NewStatsHandlers(statsService)
	activityHandlers := handlers.NewActivityHandlers(activityService)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheService)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Probes stay public.
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(cfg.JWT.Secret))

	protected.POST("/auth/logout", authHandlers.Logout)

	protected.POST("/locations", locationHandlers.CreateLocation)
	protected.GET("/locations", locationHandlers.ListRoots)
	protected.GET("/locations/tree", locationHandlers.GetTree)
	protected.GET("/locations/:id", locationHandlers.GetLocation)
	protected.GET("/locations/:id/children", locationHandlers.GetChildren)
	protected.GET("/locations/:id/items", itemHandlers.ListItemsByLocation)
	protected.PUT("/locations/:id/rename", locationHandlers.RenameLocation)
	protected.PUT("/locations/:id/move", locationHandlers.MoveLocation)
	protected.DELETE("/locations/:id", locationHandlers.DeleteLocation)

	protected.POST("/items", itemHandlers.CreateItem)
	protected.GET("/items/search", itemHandlers.SearchItems)
	protected.GET("/items/:id", itemHandlers.GetItem)
	protected.PUT("/items/:id", itemHandlers.UpdateItem)
	protected.PUT("/items/:id/move", itemHandlers.MoveItem)
	protected.DELETE("/items/:id", itemHandlers.DeleteItem)

	protected.POST("/items/:id/photos", photoHandlers.UploadPhoto)
	protected.GET("/items/:id/photos", photoHandlers.ListPhotos)
	protected.GET("/photos/:id/url", photoHandlers.GetPhotoURL)
	protected.DELETE("/photos/:id", photoHandlers.DeletePhoto)

	protected.GET("/stats", statsHandlers.GetStats)
	protected.GET("/activity", activityHandlers.ListActivity)

	auditor := jobs.NewTreeAuditor(locationRepo, logger)
	scheduler, err := background.NewJobScheduler(auditor, cfg.Audit, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler setup failed")
	}
	scheduler.Start()

	go func() {
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()
	logger.Info().Str("addr", cfg.Server.Addr).Msg("homestock listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	if err := scheduler.Stop(); err != nil {
		logger.Warn().Err(err).Msg("scheduler shutdown failed")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
}
