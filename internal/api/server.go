package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"crazygels/internal/api/handlers"
	"crazygels/internal/api/middleware"
	"crazygels/internal/config"
	"crazygels/internal/consult"
	"crazygels/internal/database"
	"crazygels/internal/events"
	"crazygels/internal/feed"
	"crazygels/internal/logger"
	"crazygels/internal/services/klaviyo"
	"crazygels/internal/services/shopify"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Shared services
	shopifyClient := shopify.NewClient(cfg.ShopifyStoreDomain, cfg.ShopifyAdminToken, cfg.ShopifyAPIVersion, logger)
	storefront := shopify.NewStorefront(cfg.ShopifyStoreDomain, cfg.ShopifyStorefrontToken, cfg.ShopifyAPIVersion, logger)
	klaviyoClient := klaviyo.NewClient(cfg.KlaviyoAPIKey, cfg.KlaviyoListID, logger)
	producer := events.NewProducer(cfg.KafkaBrokers, logger)
	merchantFeed := feed.New(shopifyClient, cfg.PublicBaseURL, logger)

	var consultant *consult.Consultant
	if cfg.OpenAIAPIKey != "" {
		consultant = consult.New(db.DB, logger, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(db.DB, logger, producer)
	stockingHandler := handlers.NewStockingHandler(db.DB, logger)
	listingHandler := handlers.NewListingHandler(db.DB, logger, shopifyClient, producer)
	exportHandler := handlers.NewExportHandler(db.DB, logger)
	feedHandler := handlers.NewFeedHandler(merchantFeed, logger)
	consultHandler := handlers.NewConsultHandler(consultant, logger)
	webhookHandler := handlers.NewWebhookHandler(db.DB, logger, cfg)
	newsletterHandler := handlers.NewNewsletterHandler(klaviyoClient, logger)
	alertsHandler := handlers.NewAlertsHandler(db.DB, logger)
	storefrontHandler := handlers.NewStorefrontHandler(storefront, logger)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(db.DB, logger, cfg, shopifyClient)

	router.GET("/health", diagnosticsHandler.Health)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Public storefront surface
		store := v1.Group("/storefront")
		{
			store.GET("/collections/:handle", storefrontHandler.Collection)
			store.GET("/products/:handle", storefrontHandler.Product)
			store.POST("/cart", storefrontHandler.CreateCart)
			store.GET("/cart/:id", storefrontHandler.Cart)
			store.POST("/cart/:id/lines", storefrontHandler.AddCartLine)
		}

		v1.POST("/consult", consultHandler.Chat)
		v1.POST("/newsletter/subscribe", newsletterHandler.Subscribe)
		v1.GET("/feed/google.xml", feedHandler.Google)

		// Shopify webhooks (HMAC-checked, not admin-authed)
		v1.POST("/webhooks/shopify", webhookHandler.Shopify)

		// Admin curation surface
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(cfg.AdminToken))
		{
			catalog := admin.Group("/catalog")
			{
				catalog.GET("", catalogHandler.List)
				catalog.POST("", catalogHandler.Upsert)
				catalog.GET("/anonymised", catalogHandler.Anonymised)
				catalog.POST("/promote", catalogHandler.Promote)
				catalog.GET("/:hash", catalogHandler.Get)
				catalog.PUT("/:hash", catalogHandler.Update)
				catalog.DELETE("/:hash", catalogHandler.Delete)
				catalog.POST("/:hash/list", listingHandler.Create)
			}

			decisions := admin.Group("/decisions")
			{
				decisions.GET("", stockingHandler.List)
				decisions.POST("", stockingHandler.Upsert)
				decisions.POST("/bulk", stockingHandler.BulkUpsert)
				decisions.GET("/:hash", stockingHandler.Get)
			}

			alerts := admin.Group("/alerts")
			{
				alerts.GET("", alertsHandler.List)
				alerts.GET("/:id", alertsHandler.Get)
				alerts.POST("/:id/review", alertsHandler.Review)
			}

			exports := admin.Group("/exports")
			{
				exports.GET("/catalog.csv", exportHandler.CatalogCSV)
				exports.GET("/shopify.csv", exportHandler.ShopifyCSV)
				exports.POST("/catalog", exportHandler.ImportCatalog)
			}

			reports := admin.Group("/reports")
			{
				reports.GET("/intelligence", exportHandler.IntelligenceReport)
				reports.GET("/price-trends.csv", exportHandler.PriceTrendsCSV)
				reports.GET("/alerts", exportHandler.AlertReport)
			}

			admin.GET("/diagnostics", diagnosticsHandler.Status)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// GetRouter returns the Gin router for Vercel
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
