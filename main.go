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

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/common-nighthawk/go-figure"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/cache"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/certificate"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/config"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/events"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/handlers"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories/casdoor"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories/postgres"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/storage"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/validator"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	figure.NewFigure("Yosh Tadqiqotchi", "small", true).Print()

	slogLogger := utils.NewJSONLogger(cfg, utils.NewLogWriter(cfg))
	logger := utils.NewSlogLogger(slogLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis is optional; caches and served question sets degrade to no-ops
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		CasdoorConfig: casdoor.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Cert,
			OrganizationName: cfg.Casdoor.Organization,
			ApplicationName:  cfg.Casdoor.Application,
		},
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	publisher, err := newEventPublisher(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize events: %v", err)
	}

	store, err := newArtifactStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	serviceManager := services.NewDefaultServiceManager(&services.Dependencies{
		Repo:      repo,
		Logger:    slogLogger,
		Validator: validator.New(),
		Events:    publisher,
		Store:     store,
		Renderer:  certificate.NewRenderer(),
		Sessions:  cache.NewQuestionSessionStore(cache.NewCacheManager(redisClient)),
		Shuffler:  services.NewShuffler(uint64(time.Now().UnixNano())),
	})
	if err := serviceManager.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	authMiddleware := handlers.NewCasdoorAuthMiddleware(cfg.Casdoor, repo, logger)
	handlerManager := handlers.NewHandlerManager(serviceManager, authMiddleware, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := serviceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	if err := repoManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}

	logger.Info("Server exited")
}

// newEventPublisher uses Kafka when brokers are configured. Otherwise events
// go through an in-process channel consumed by the audit logger.
func newEventPublisher(ctx context.Context, cfg *config.Config, logger utils.Logger) (events.EventPublisher, error) {
	if len(cfg.Kafka.Brokers) > 0 {
		logger.Info("Publishing events to Kafka", "brokers", cfg.Kafka.Brokers)
		return events.NewKafkaEventPublisher(cfg.Kafka.Brokers, logger.Slog())
	}

	publisher, channel := events.NewInProcessEventPublisher(logger.Slog())
	go func(sub message.Subscriber) {
		if err := events.RunAuditLog(ctx, sub, logger.Slog()); err != nil {
			logger.Warn("Audit log stopped", "error", err)
		}
	}(channel)
	return publisher, nil
}

// newArtifactStore uses MinIO when an endpoint is configured, the local disk otherwise
func newArtifactStore(ctx context.Context, cfg *config.Config) (storage.ArtifactStore, error) {
	if cfg.Storage.Endpoint != "" {
		return storage.NewMinioStore(ctx, cfg.Storage)
	}
	return storage.NewDiskStore(cfg.Storage.Dir)
}
