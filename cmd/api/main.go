package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/slotwise/slotwise-api/api/swagger"
	"github.com/slotwise/slotwise-api/internal/handler"
	"github.com/slotwise/slotwise-api/internal/middleware"
	"github.com/slotwise/slotwise-api/internal/models"
	"github.com/slotwise/slotwise-api/internal/repository"
	"github.com/slotwise/slotwise-api/internal/service"
	"github.com/slotwise/slotwise-api/pkg/cache"
	"github.com/slotwise/slotwise-api/pkg/config"
	"github.com/slotwise/slotwise-api/pkg/database"
	"github.com/slotwise/slotwise-api/pkg/jobs"
	"github.com/slotwise/slotwise-api/pkg/logger"
	corsmiddleware "github.com/slotwise/slotwise-api/pkg/middleware/cors"
	reqidmiddleware "github.com/slotwise/slotwise-api/pkg/middleware/requestid"
)

// @title SlotWise API
// @version 1.0.0
// @description Service provider booking platform
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is an accelerator, not a dependency: the API serves without it.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, availability cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var notifier *service.BookingNotifier
	if cfg.Events.Enabled {
		notifier = service.NewBookingNotifier(jobs.Options{
			Workers:    cfg.Events.Workers,
			BufferSize: cfg.Events.Buffer,
			Logger:     logr,
		})
		notifier.Start(rootCtx)
		defer notifier.Stop()
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	catalogSvc := service.NewCatalogService(serviceRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, cacheRepo, validate, logr)
	availabilitySvc := service.NewAvailabilityService(scheduleRepo, bookingRepo, cacheRepo, metricsSvc, logr, cfg.Booking.SlotDuration, cfg.Booking.AvailabilityCacheTTL)
	bookingSvc := service.NewBookingService(bookingRepo, serviceRepo, notifier, cacheRepo, metricsSvc, validate, logr, cfg.Booking.SlotDuration)
	exportSvc := service.NewExportService(bookingRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	serviceHandler := handler.NewServiceHandler(catalogSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc, catalogSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/signup", authHandler.Signup)
		api.POST("/login", authHandler.Login)
		api.GET("/services", serviceHandler.List)
		api.GET("/services/:id", serviceHandler.Get)
		api.GET("/availability/:provider_id/:date", availabilityHandler.Get)

		authed := api.Group("")
		authed.Use(middleware.JWT(authSvc))
		{
			authed.GET("/users/me", authHandler.Profile)
			authed.PUT("/users/me", authHandler.UpdateProfile)

			customers := authed.Group("")
			customers.Use(middleware.RequireRoles(models.RoleCustomer))
			{
				customers.POST("/bookings", bookingHandler.Create)
			}

			providers := authed.Group("")
			providers.Use(middleware.RequireRoles(models.RoleProvider))
			{
				providers.POST("/services", serviceHandler.Create)
				providers.PUT("/services/:id", serviceHandler.Update)
				providers.DELETE("/services/:id", serviceHandler.Delete)
				providers.POST("/schedules", scheduleHandler.Replace)
				providers.GET("/schedules", scheduleHandler.Get)
				providers.PUT("/bookings/:id/status", bookingHandler.UpdateStatus)
				if cfg.Booking.ExportEnabled {
					providers.GET("/bookings/export", bookingHandler.Export)
				}
			}

			// Listing serves both roles; the service dispatches on the claims.
			authed.GET("/bookings", bookingHandler.List)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("closing redis failed", "error", err)
	}
}
