package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-service/internal/middleware"
	"catalog-service/internal/services"
)

// Services bundles everything the router dispatches to.
type Services struct {
	Products   *services.CatalogService
	Services   *services.CatalogService
	Categories *services.CategoryService
	Brands     *services.BrandService
	Favorites  *services.FavoriteService
	Media      *services.MediaService
	MediaTypes *services.MediaTypeService
	Features   *services.FeatureService
}

type RouterConfig struct {
	Logger      *logrus.Logger
	Auth        gin.HandlerFunc
	RateLimiter *middleware.IPRateLimiter
	CORSOrigins []string
	Pager       Pager
	DB          Pinger
	Swagger     bool
}

// NewRouter wires middleware and every route of the catalog API.
func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(middleware.CORS(cfg.CORSOrigins...))
	if cfg.RateLimiter != nil {
		router.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	// Health check endpoints (no auth required)
	router.GET("/health", HealthCheck)
	router.GET("/ready", ReadinessCheck(cfg.DB))
	if cfg.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	media := NewMediaHandler(svc.Media, cfg.Pager)
	media.RegisterPublic(router.Group("/api"))

	api := router.Group("/api")
	if cfg.Auth != nil {
		api.Use(cfg.Auth)
	}

	NewCatalogHandler(svc.Products, cfg.Pager).Register(api)
	NewCatalogHandler(svc.Services, cfg.Pager).Register(api)
	NewCategoryHandler(svc.Categories, cfg.Pager).Register(api)
	NewBrandHandler(svc.Brands, cfg.Pager).Register(api)
	NewFavoriteHandler(svc.Favorites, cfg.Pager).Register(api)
	media.Register(api)
	NewMediaTypeHandler(svc.MediaTypes).Register(api)
	NewFeatureHandler(svc.Features).Register(api)

	return router
}
