package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/forkful-api/internal/ai"
	"github.com/windoze95/forkful-api/internal/cache"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/db"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/router"
	"github.com/windoze95/forkful-api/internal/s3"
	"github.com/windoze95/forkful-api/internal/service"
	"github.com/windoze95/forkful-api/internal/ws"
	"go.uber.org/zap"
)

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the API.
func main() {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the config
	var cfg *config.Config
	if c, err := config.LoadConfig(); err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	} else {
		cfg = c
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}

	// Load prompts from YAML
	prompts, err := config.LoadPrompts("configs/prompts.yaml")
	if err != nil {
		logger.Get().Fatal("failed to load prompts", zap.Error(err))
	}
	cfg.Prompts = prompts

	// Connect to the database
	database, err := db.New(cfg)
	if err != nil {
		logger.Get().Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := database.DB()
	if err != nil {
		logger.Get().Fatal("failed to get underlying sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	responseCache, imageCache := newCaches(ctx, cfg)

	store, err := s3.NewStore(ctx, cfg)
	if err != nil {
		logger.Get().Fatal("failed to create S3 store", zap.Error(err))
	}

	// AI provider setup
	textProvider := ai.NewAnthropicProvider(cfg.EnvVars.AnthropicAPIKey, cfg.Prompts)
	images := &service.ImageFinder{
		Store:   store,
		Prompts: cfg.Prompts,
		Cache:   imageCache,
	}
	if searchProvider := ai.NewWebImageSearchProvider(cfg.EnvVars.GoogleSearchKey, cfg.EnvVars.GoogleSearchCX, cfg.EnvVars.BraveSearchKey); searchProvider.Enabled() {
		images.Search = searchProvider
	}
	if cfg.EnvVars.OpenAIAPIKey != "" {
		images.Generator = ai.NewDALLEProvider(cfg.EnvVars.OpenAIAPIKey)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	recipeRepo := repository.NewRecipeRepository(database)
	userRepo := repository.NewUserRepository(database)
	notificationService := service.NewNotificationService(repository.NewNotificationRepository(database), ws.NewHubSender(hub))

	services := router.Services{
		Users:         service.NewUserService(cfg, userRepo),
		Recipes:       service.NewRecipeService(cfg, recipeRepo, store),
		Search:        service.NewSearchService(cfg, recipeRepo, userRepo),
		Generate:      service.NewGenerateService(cfg, recipeRepo, textProvider, ai.NewOEmbedProvider(cfg.EnvVars.InstagramToken), images, responseCache),
		Engagement:    service.NewEngagementService(repository.NewEngagementRepository(database), notificationService),
		Collections:   service.NewCollectionService(repository.NewCollectionRepository(database)),
		Notifications: notificationService,
		Hub:           hub,
	}

	// Create a new gin router
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(ctx, cfg, services)

	srv := &http.Server{
		Addr:              ":" + cfg.EnvVars.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Get().Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Get().Error("graceful shutdown failed", zap.Error(err))
	}
	if err := hub.Wait(shutdownCtx); err != nil {
		logger.Get().Warn("websocket hub did not stop in time", zap.Error(err))
	}
}

// newCaches returns the AI response cache and the image URL cache. Both are
// backed by Redis when REDIS_URL is set and by bounded in-memory caches otherwise.
func newCaches(ctx context.Context, cfg *config.Config) (cache.Cache, cache.Cache) {
	ttl := cfg.EnvVars.CacheTTL

	if cfg.EnvVars.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.EnvVars.RedisURL)
		if err != nil {
			logger.Get().Fatal("failed to connect to redis", zap.Error(err))
		}
		return cache.WithMetrics(cache.NewRedisCache(client, "forkful:ai:", ttl), "ai_response"),
			cache.WithMetrics(cache.NewRedisCache(client, "forkful:img:", ttl), "image_url")
	}

	responses := cache.NewMemoryCache(cfg.EnvVars.CacheMaxEntries, ttl)
	imageURLs := cache.NewMemoryCache(cfg.EnvVars.CacheMaxEntries, ttl)
	go responses.Janitor(ctx, 10*time.Minute)
	go imageURLs.Janitor(ctx, 10*time.Minute)

	return cache.WithMetrics(responses, "ai_response"), cache.WithMetrics(imageURLs, "image_url")
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
