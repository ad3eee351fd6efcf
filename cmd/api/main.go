package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/adapters/cache"
	"github.com/crossroads-hq/crossroads-backend/internal/adapters/database"
	"github.com/crossroads-hq/crossroads-backend/internal/adapters/events"
	"github.com/crossroads-hq/crossroads-backend/internal/adapters/identity"
	"github.com/crossroads-hq/crossroads-backend/internal/adapters/search"
	"github.com/crossroads-hq/crossroads-backend/internal/adapters/storage"
	"github.com/crossroads-hq/crossroads-backend/internal/api/handlers"
	"github.com/crossroads-hq/crossroads-backend/internal/api/middleware"
	"github.com/crossroads-hq/crossroads-backend/internal/api/routes"
	"github.com/crossroads-hq/crossroads-backend/internal/application/services"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/postgres"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/redis"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/typesense"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/observability"
	"github.com/crossroads-hq/crossroads-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client; the application can run without caching
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for cache invalidation and live admin views
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize adapters
	baseBusinessAdapter := database.NewBusinessAdapter(pgClient)

	var businessAdapter repositories.BusinessRepository
	if cacheProvider != nil {
		businessAdapter = database.NewCachedBusinessAdapter(baseBusinessAdapter, cacheProvider)
		log.Println("Business adapter wrapped with caching layer")
	} else {
		businessAdapter = baseBusinessAdapter
		log.Println("Business adapter running without cache (Redis unavailable)")
	}

	userAdapter := database.NewUserAdapter(pgClient)
	reviewAdapter := database.NewReviewAdapter(pgClient)
	subscriptionAdapter := database.NewSubscriptionAdapter(pgClient)
	postAdapter := database.NewPostAdapter(pgClient)

	var searchRepo repositories.BusinessSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	identityProvider := identity.NewAdminAdapter(&cfg.Identity)
	storageProvider := storage.NewObjectStorageAdapter(&cfg.Storage)

	// Initialize services
	businessService := services.NewBusinessService(businessAdapter, searchRepo, userAdapter, eventBus)
	userService := services.NewUserService(userAdapter)
	reviewService := services.NewReviewService(reviewAdapter, businessAdapter, searchRepo, eventBus)
	subscriptionService := services.NewSubscriptionService(subscriptionAdapter, businessAdapter)
	postService := services.NewPostService(postAdapter, businessAdapter)
	provisioningService := services.NewProvisioningService(userAdapter, identityProvider, cfg.Identity.DefaultGroup)
	groupService := services.NewGroupService(userAdapter, identityProvider)
	listingService := services.NewListingService(businessAdapter)

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Printf("Warning: Failed to start cache invalidation service: %v", err)
		} else {
			log.Println("Cache invalidation service started successfully")
		}
	}

	// Initialize handlers
	businessHandler := handlers.NewBusinessHandler(businessService)
	userHandler := handlers.NewUserHandler(userService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	postHandler := handlers.NewPostHandler(postService)
	adminHandler := handlers.NewAdminHandler(listingService, businessService, groupService)
	triggerHandler := handlers.NewTriggerHandler(provisioningService)
	storageHandler := handlers.NewStorageHandler(
		storageProvider,
		businessService,
		time.Duration(cfg.Storage.URLExpirySec)*time.Second,
	)

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	// Set up router
	router := routes.NewRouter(
		businessHandler,
		userHandler,
		reviewHandler,
		subscriptionHandler,
		postHandler,
		adminHandler,
		triggerHandler,
		storageHandler,
		authMiddleware,
		cfg.Identity.WebhookSecret,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Println("Server stopped")
}
