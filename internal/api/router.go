package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/api/handlers"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/api/middleware"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// Services is everything the public API dispatches to. PropertyInfo may be
// nil when no Postgres database is configured.
type Services struct {
	Properties   services.IPropertyService
	Users        services.IUserService
	Favorites    services.IFavoriteService
	Comparisons  services.IComparisonService
	Listings     services.IListingService
	Dashboard    services.IDashboardService
	PropertyInfo services.IPropertyInfoService
}

// SetupRouter configures and returns the main Gin engine. ctx bounds the
// rate limiter's background cleanup.
func SetupRouter(ctx context.Context, cfg *config.Config, svc Services) *gin.Engine {
	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg)

	// Order matters: the limiter keys signed-in clients by user id.
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.OptionalAuthMiddleware(cfg.JwtSecret))
	r.Use(rateLimiter.Limit())

	jsonApiHandler := handlers.NewJsonApiHandler(cfg, handlers.JsonApiServices{
		Properties:   svc.Properties,
		Users:        svc.Users,
		Favorites:    svc.Favorites,
		Comparisons:  svc.Comparisons,
		Listings:     svc.Listings,
		Dashboard:    svc.Dashboard,
		PropertyInfo: svc.PropertyInfo,
	})
	restPropertyHandler := handlers.NewRestPropertyHandler(svc.Properties)
	restUserHandler := handlers.NewRestUserHandler(svc.Users, svc.Listings)
	restFavoriteHandler := handlers.NewRestFavoriteHandler(svc.Favorites, svc.Comparisons)
	restListingHandler := handlers.NewRestListingHandler(svc.Listings)
	restDashboardHandler := handlers.NewRestDashboardHandler(svc.Dashboard)
	restPropertyInfoHandler := handlers.NewRestPropertyInfoHandler(svc.PropertyInfo)

	v1 := r.Group("/v1")
	{
		v1.POST("/api", jsonApiHandler.HandleRequest)

		v1.GET("/properties", restPropertyHandler.SearchProperties)
		v1.GET("/properties/suggest", restPropertyHandler.Suggest)
		v1.GET("/properties/featured", restPropertyHandler.Featured)
		v1.GET("/properties/:id", restPropertyHandler.GetPropertyByID)

		v1.POST("/auth/signup", restUserHandler.SignUp)
		v1.POST("/auth/signin", restUserHandler.SignIn)
		v1.GET("/users/:id", restUserHandler.GetUserByID)

		v1.POST("/property-info", restPropertyInfoHandler.Lookup)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/me", restUserHandler.Me)

			authRequired.GET("/favorites", restFavoriteHandler.ListFavorites)
			authRequired.POST("/favorites/:id", restFavoriteHandler.AddFavorite)
			authRequired.DELETE("/favorites/:id", restFavoriteHandler.RemoveFavorite)
			authRequired.GET("/compare", restFavoriteHandler.Compare)

			authRequired.GET("/listings", restListingHandler.ListOwnListings)
			authRequired.POST("/listings", restListingHandler.SubmitListing)
			authRequired.POST("/listings/:id/images", restListingHandler.RequestImageUpload)
			authRequired.POST("/listings/:id/images/complete", restListingHandler.CompleteImageUpload)

			authRequired.GET("/dashboard", restDashboardHandler.GetDashboard)
		}

		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.DELETE("/search-cache", restPropertyHandler.FlushSearchCache)
		}
	}

	return r
}

// SetupServiceRouter configures the internal service engine used by
// operators and deployment scripts.
func SetupServiceRouter(properties services.IPropertyService, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			zap.L().Info("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "data": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				zap.L().Warn("Shutdown channel already signaled")
			}
		case "flushSearchCache":
			n, err := properties.FlushCache(c.Request.Context())
			if err != nil {
				zap.L().Error("Service API: flushing search cache failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to flush search cache"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"removed": n}})
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
