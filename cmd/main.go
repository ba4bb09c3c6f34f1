package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountcmd "github.com/amadorcf/YourBank-account-service/internal/command"
	"github.com/amadorcf/YourBank-account-service/internal/config"
	"github.com/amadorcf/YourBank-account-service/internal/handler"
	"github.com/amadorcf/YourBank-account-service/internal/identity"
	"github.com/amadorcf/YourBank-account-service/internal/metrics"
	accountqry "github.com/amadorcf/YourBank-account-service/internal/query"
	"github.com/amadorcf/YourBank-account-service/internal/repository"
	"github.com/amadorcf/YourBank-account-service/internal/sequence"
	"github.com/amadorcf/YourBank-account-service/shared/events"
	"github.com/amadorcf/YourBank-account-service/shared/logger"
	"github.com/amadorcf/YourBank-account-service/shared/middleware"
	redisClient "github.com/amadorcf/YourBank-account-service/shared/redis"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database connection (write store)
	db, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		logger.Fatal("Failed to apply migrations", err)
	}

	// Redis connection (read model, user cache, sequence, event streaming)
	redis, err := redisClient.NewClient(ctx, redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Redis", err)
	}
	defer redis.Close()

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client, events.PublisherConfig{
		Source: "account-service",
		MaxLen: cfg.EventStreamMaxLen,
	})

	writeRepo := repository.NewAccountWriteRepository(db)
	readRepo := repository.NewAccountReadRepository(db, redis.Client, cfg.AccountViewTTL)

	generator, err := sequence.New(cfg.SequenceBackend, db, redis.Client, cfg.SequenceServiceURL, cfg.ClientTimeout)
	if err != nil {
		logger.Fatal("Failed to configure sequence generator", err)
	}
	directory := identity.NewDirectory(cfg.UserServiceURL, cfg.ClientTimeout, redis.Client, cfg.UserCacheTTL)

	querySvc := accountqry.NewAccountQueryService(readRepo)
	commandSvc := accountcmd.NewAccountCommandService(accountcmd.Config{
		Store:       writeRepo,
		Users:       directory,
		Sequence:    generator,
		Views:       readRepo,
		Publisher:   publisher,
		Balances:    querySvc,
		SuccessCode: cfg.SuccessResponseCode,
	})

	accountHandler := handler.NewAccountHandler(commandSvc, querySvc)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(time.Minute, ctx.Done())

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(), metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "account-service"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("", middleware.AuthMiddleware(cfg.JWTSecret), limiter.Middleware())
	accountHandler.RegisterRoutes(api)

	go func() {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    "account-service-group",
			Consumer: "account-consumer-1",
			Stream:   events.UserEventsStream,
			Handler:  directory.HandleUserEvent,
		})
		if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Subscriber stopped", err, nil)
		}
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Account service starting", logger.Fields{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...", nil)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", err, nil)
	}
}
