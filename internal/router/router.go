package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/handlers"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/metrics"
	"github.com/windoze95/forkful-api/internal/middleware"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/service"
	"github.com/windoze95/forkful-api/internal/ws"
)

// Services bundles everything the routes call into.
type Services struct {
	Users         *service.UserService
	Recipes       *service.RecipeService
	Search        *service.SearchService
	Generate      *service.GenerateService
	Engagement    *service.EngagementService
	Collections   *service.CollectionService
	Notifications *service.NotificationService
	Hub           *ws.Hub
}

// SetupRouter sets up the Gin router. Background goroutines started here
// (rate limiter cleanup) stop when ctx is done.
func SetupRouter(ctx context.Context, cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())
	r.Use(metrics.Middleware())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userHandler := handlers.NewUserHandler(svc.Users)
	recipeHandler := handlers.NewRecipeHandler(svc.Recipes)
	searchHandler := handlers.NewSearchHandler(svc.Search)
	importHandler := handlers.NewImportHandler(svc.Generate)
	engagementHandler := handlers.NewEngagementHandler(svc.Engagement)
	collectionHandler := handlers.NewCollectionHandler(svc.Collections)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)

	attachUser := middleware.AttachUserToContext(func(c *gin.Context, userID uint) (*models.User, error) {
		return svc.Users.GetUserByID(c.Request.Context(), userID)
	})

	// AI calls are expensive: one request every 6 seconds per IP, burst of 3
	aiLimiter := middleware.RateLimitByIP(ctx, 1.0/6, 3, 5*time.Minute, 30*time.Minute)

	// Group for API routes that don't require token verification
	apiPublic := r.Group("/v1")
	{
		// Create a new user
		apiPublic.POST("/users", userHandler.CreateUser)
		// Login a user
		apiPublic.POST("/auth/login", userHandler.LoginUser)
		// Refresh an access token
		apiPublic.POST("/auth/refresh", userHandler.RefreshToken)

		// Get a single recipe by its ID
		apiPublic.GET("/recipes/:recipe_id", recipeHandler.GetRecipe)
	}

	// Group for API routes that require token verification
	apiProtected := r.Group("/v1")
	apiProtected.Use(middleware.VerifyTokenMiddleware(cfg), attachUser)
	{
		// User-related routes
		apiProtected.GET("/auth/verify", userHandler.VerifyToken)
		apiProtected.GET("/users/me", userHandler.GetMe)
		apiProtected.PUT("/users/me/profile", userHandler.UpdateProfile)

		// Search routes
		apiProtected.GET("/discover/search", searchHandler.Discover)
		apiProtected.GET("/community/recipes", searchHandler.Community)

		// Recipe-related routes
		apiProtected.GET("/recipes", recipeHandler.ListRecipes)
		apiProtected.POST("/recipes", recipeHandler.CreateRecipe)
		apiProtected.PUT("/recipes/:recipe_id", recipeHandler.UpdateRecipe)
		apiProtected.DELETE("/recipes/:recipe_id", recipeHandler.DeleteRecipe)
		apiProtected.POST("/recipes/:recipe_id/image", recipeHandler.UploadImage)

		// Generation and import
		apiProtected.POST("/recipes/generate", aiLimiter, importHandler.GenerateRecipe)
		apiProtected.POST("/recipes/import/social", aiLimiter, importHandler.ImportSocial)

		// Engagement
		apiProtected.POST("/recipes/:recipe_id/like", engagementHandler.ToggleLike)
		apiProtected.POST("/recipes/:recipe_id/save", engagementHandler.ToggleSave)
		apiProtected.POST("/recipes/:recipe_id/share", engagementHandler.Share)

		// Collections
		apiProtected.POST("/collections", collectionHandler.CreateCollection)
		apiProtected.GET("/collections", collectionHandler.ListCollections)
		apiProtected.GET("/collections/:collection_id", collectionHandler.GetCollection)
		apiProtected.DELETE("/collections/:collection_id", collectionHandler.DeleteCollection)
		apiProtected.POST("/collections/:collection_id/recipes", collectionHandler.AddRecipe)
		apiProtected.DELETE("/collections/:collection_id/recipes/:recipe_id", collectionHandler.RemoveRecipe)

		// Notifications
		apiProtected.GET("/notifications", notificationHandler.ListNotifications)
		apiProtected.PUT("/notifications/:notification_id/read", notificationHandler.MarkRead)
		apiProtected.POST("/notifications/devices", notificationHandler.RegisterDevice)
		apiProtected.GET("/notifications/devices", notificationHandler.ListDevices)
	}

	// WebSocket routes (authenticated via query param token)
	if svc.Hub != nil {
		wsHandler := ws.NewNotificationHandler(svc.Hub, cfg.EnvVars.JwtSecretKey, cfg.AllowedOrigins())
		r.GET("/v1/ws/notifications", wsHandler.HandleNotifications)
	}

	return r
}
