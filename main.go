package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kisahtegar/alqowy/internal/config"
	"github.com/kisahtegar/alqowy/internal/events"
	"github.com/kisahtegar/alqowy/internal/handlers"
	"github.com/kisahtegar/alqowy/internal/repositories/postgres"
	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/storage/s3"
	"github.com/kisahtegar/alqowy/internal/utils"
	"github.com/kisahtegar/alqowy/internal/validator"
	"github.com/kisahtegar/alqowy/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewSlogLogger(cfg.LogLevel, cfg.Environment)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, running without cache", "error", err)
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	// Initialize validator
	v := validator.NewValidator()

	// Initialize file storage
	fileStore, err := s3.NewStore(context.Background(), s3.Config{
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKey,
		SecretAccessKey: cfg.Storage.SecretKey,
		Endpoint:        cfg.Storage.Endpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Initialize event publisher. Without brokers the platform runs
	// standalone: registration events are dropped and default roles are
	// assigned on first authenticated request instead.
	publisher := events.NewNoopEventPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = events.NewKafkaEventPublisher(cfg.Kafka.Brokers, logger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
	}

	// Initialize services
	serviceManager := services.NewDefaultServiceManager(db, repo, logger, v, fileStore, publisher)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Start the registration consumer when eventing is enabled
	var subscriber *events.RegistrationSubscriber
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	if len(cfg.Kafka.Brokers) > 0 {
		assigner := idempotentRoleAssigner{roles: serviceManager.Role()}
		subscriber, err = events.NewRegistrationSubscriber(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, assigner, logger)
		if err != nil {
			log.Fatalf("Failed to initialize registration consumer: %v", err)
		}
		go func() {
			if err := subscriber.Run(consumerCtx); err != nil {
				logger.Error("Registration consumer stopped", "error", err)
			}
		}()
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, logger, cfg.Casdoor, repo.User(), publisher)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	cancelConsumer()
	if subscriber != nil {
		if err := subscriber.Close(); err != nil {
			logger.Error("Failed to close registration consumer", "error", err)
		}
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}

// idempotentRoleAssigner absorbs the already-has-role outcome so a
// redelivered registration event acks instead of retrying forever.
type idempotentRoleAssigner struct {
	roles services.RoleService
}

func (a idempotentRoleAssigner) AssignDefaultRole(ctx context.Context, userID string) error {
	err := a.roles.AssignDefaultRole(ctx, userID)
	if errors.Is(err, services.ErrAlreadyHasRole) {
		return nil
	}
	return err
}
