package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"catalog-service/internal/config"
	"catalog-service/internal/events"
	"catalog-service/internal/handlers"
	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"catalog-service/internal/search"
	"catalog-service/internal/services"
)

// @title Catalog API
// @version 1.0.0
// @description Products, services, categories, brands, media and favorites for the marketplace catalog

// @host localhost:8087
// @BasePath /api

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(cfg)
	if envErr != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	store := repository.NewStore(db)

	tracker := newTracker(cfg, logger)

	// Event publishing is optional; services skip it when the publisher is nil
	var publisher services.EventPublisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize events publisher, continuing without event publishing")
		} else {
			logger.Info("Events publisher initialized (NATS connected)")
			publisher = p
			defer p.Close()
		}
	} else {
		logger.Info("NATS_URL not set, skipping event publishing initialization")
	}

	files, err := config.NewFileStorage(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize file storage")
	}

	svc := handlers.Services{
		Products:   services.NewCatalogService(models.KindProduct, store, tracker, publisher, logger),
		Services:   services.NewCatalogService(models.KindService, store, tracker, publisher, logger),
		Categories: services.NewCategoryService(store, logger),
		Brands:     services.NewBrandService(store, logger),
		Favorites:  services.NewFavoriteService(store, logger),
		Media:      services.NewMediaService(store, files, logger),
		MediaTypes: services.NewMediaTypeService(store),
		Features:   services.NewFeatureService(store),
	}

	// In development with AUTH_DISABLED the caller is taken from X-User-ID
	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	if cfg.AuthDisabled && !cfg.IsProduction() {
		logger.Warn("Authentication disabled, reading the caller from X-User-ID")
		auth = middleware.DevelopmentAuthMiddleware()
	}

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:      logger,
		Auth:        auth,
		RateLimiter: limiter,
		CORSOrigins: cfg.CORSOrigins,
		Pager:       handlers.Pager{DefaultSize: cfg.DefaultPageSize, MaxSize: cfg.MaxPageSize},
		DB:          store,
		Swagger:     !cfg.IsProduction(),
	}, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("port", cfg.Port).Info("Catalog service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down catalog-service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Catalog service stopped with error")
		os.Exit(1)
	}
	logger.Info("Catalog service stopped")
}

// newTracker returns a Redis-backed search tracker, or a no-op one when Redis
// is not configured or unreachable.
func newTracker(cfg *config.Config, logger *logrus.Logger) search.Tracker {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, search analytics disabled")
		return search.NopTracker{}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse Redis URL, search analytics disabled")
		return search.NopTracker{}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis, search analytics disabled")
		client.Close()
		return search.NopTracker{}
	}
	logger.Info("Redis connected successfully")
	return search.NewRedisTracker(client, logger)
}
