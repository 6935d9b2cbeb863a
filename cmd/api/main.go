package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"marketpulse/internal/config"
	"marketpulse/internal/database"
	"marketpulse/internal/handlers"
	"marketpulse/internal/logger"
	"marketpulse/internal/middleware"
	"marketpulse/internal/providers"
	"marketpulse/internal/scheduler"
	"marketpulse/internal/services"
	"marketpulse/internal/validator"
)

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

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	db := dbManager.DB()

	// Provider clients. Credentials are optional: a missing one leaves its
	// slot nil and the owning service degrades.
	coingecko := providers.NewCoinGeckoClient(appConfig.CoinGeckoBaseURL)

	var equity services.EquityHistoryProvider
	if appConfig.AlphaVantageAPIKey != "" {
		equity = providers.NewAlphaVantageClient(appConfig.AlphaVantageAPIKey)
	} else {
		log.Warn("ALPHA_VANTAGE_API_KEY not set; primary equity provider disabled")
	}

	var quoteFB services.QuoteProvider
	if appConfig.FinnhubAPIKey != "" {
		quoteFB = providers.NewFinnhubClient(appConfig.FinnhubAPIKey)
	} else {
		log.Warn("FINNHUB_API_KEY not set; secondary equity provider disabled")
	}

	var search services.SearchProvider
	if appConfig.NewsAPIKey != "" {
		search = providers.NewNewsAPIClient(appConfig.NewsAPIKey)
	} else {
		log.Warn("NEWSAPI_KEY not set; news ingestion disabled")
	}

	var sentiment services.SentimentProvider
	if appConfig.HuggingFaceAPIKey != "" {
		sentiment = providers.NewHuggingFaceClient(appConfig.HuggingFaceAPIKey)
	}

	var toxicity services.ToxicityProvider
	if appConfig.PerspectiveAPIKey != "" {
		toxicity = providers.NewPerspectiveClient(appConfig.PerspectiveAPIKey)
	} else {
		log.Warn("PERSPECTIVE_API_KEY not set; toxicity analysis disabled")
	}

	// Services
	userService := services.NewUserService(db)
	assetService := services.NewAssetService(db)
	priceService := services.NewPriceService(db, coingecko, equity, quoteFB)
	newsService := services.NewNewsService(db, search)
	analysisService := services.NewAnalysisService(db, sentiment, services.NewVaderAnalyzer(), toxicity)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	assetHandler := handlers.NewAssetHandler(assetService, priceService)
	newsHandler := handlers.NewNewsHandler(analysisService)

	// Background batch jobs
	sched := scheduler.New(assetService, priceService, newsService, scheduler.Options{
		PriceInterval: appConfig.PriceRefreshInterval,
		NewsInterval:  appConfig.NewsRefreshInterval,
		PacingRPS:     appConfig.PacingRPS,
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// Router
	validator.Register()
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	assets := protected.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.ListAssets)
	assets.GET("/:id", assetHandler.GetAsset)
	assets.GET("/:id/news", assetHandler.GetAssetNews)
	assets.GET("/:id/price", assetHandler.GetAssetPrice)

	news := protected.Group("/news")
	news.POST("/:id/analyze", newsHandler.AnalyzeArticle)

	log.Infof("Starting Marketpulse backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
