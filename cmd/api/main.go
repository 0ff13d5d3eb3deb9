package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptovol/internal/config"
	"cryptovol/internal/handler"
	"cryptovol/internal/middleware"
	"cryptovol/internal/service"
	"cryptovol/pkg/binance"
	"cryptovol/pkg/logger"
	"cryptovol/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.GetLogger()

	log.Info("Starting Crypto Volatility API...")
	log.Infof("Environment: %s", cfg.Server.Env)

	// Redis only backs the rate limiter; skip it entirely when disabled
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		log.Info("Connecting to Redis...")
		redisClient, err = redis.New(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", err)
		}
		defer redisClient.Close()
		log.Info("Redis connected")
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if redisClient != nil {
		router.Use(middleware.RateLimit(redisClient, cfg.RateLimit.RequestsPerMinute))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Crypto Volatility API. Use /volatility/{symbol} to get volatility metrics.",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := redisClient.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  "Redis connection failed",
				})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"status": "healthy",
				"redis":  "connected",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	binanceClient := binance.NewClient(cfg.Binance.APIURL)
	volatilityService := service.NewVolatilityService(binanceClient)
	volatilityHandler := handler.NewVolatilityHandler(volatilityService)

	router.GET("/volatility/:symbol", volatilityHandler.GetVolatility)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server starting on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", err)
	}

	log.Info("Server exited")
}
