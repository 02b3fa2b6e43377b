package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Sarish05/AIvestor-sub000/internal/config"
	"github.com/Sarish05/AIvestor-sub000/internal/handlers"
	"github.com/Sarish05/AIvestor-sub000/internal/logger"
	"github.com/Sarish05/AIvestor-sub000/internal/prices"
	"github.com/Sarish05/AIvestor-sub000/internal/session"
)

func main() {
	logger.Setup()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment defaults")
	}
	cfg := config.Load()

	// Simulated price source shared by trades and the stream
	sim := prices.NewSimulator()
	stream := handlers.NewPriceStream(sim, cfg.PriceTick)
	stream.Start()
	defer stream.Stop()

	// One paper portfolio per session
	sessions := session.NewRegistry(cfg.InitialCash)

	// Order queue
	orders := handlers.NewOrderProcessor(cfg.OrderWorkers, sessions, sim)
	orders.Start()
	defer orders.Stop()

	h := handlers.New(sessions, sim, orders)

	// Set Gin mode based on environment
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// API routes
	api := router.Group("/api")
	{
		api.POST("/trades/buy", h.BuyStock)
		api.POST("/trades/sell", h.SellStock)
		api.GET("/trades", h.GetTradeHistory)
		api.GET("/portfolio", h.GetPortfolio)
		api.GET("/portfolio/history", h.GetPortfolioHistory)
		api.GET("/quotes", stream.Quotes)
	}

	// WebSocket endpoint
	router.GET("/ws/prices", stream.Stream)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
