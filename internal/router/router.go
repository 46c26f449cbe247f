package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/api"
	"github.com/daypilot/backend/internal/live"
	"github.com/daypilot/backend/internal/middleware"
	"github.com/daypilot/backend/internal/service"
)

// Version is reported by the health endpoint.
const Version = "v1.0.0"

// Dependencies is everything the routes need. The limiters and Checks are
// optional.
type Dependencies struct {
	Auth     service.IAuthService
	Profiles service.IProfileService
	Tasks    service.ITaskService
	Routines service.IRoutineService
	Menu     service.IMenuService
	Meals    service.IMealService
	Shopping service.IShoppingService
	Uploads  service.IUploadService
	Hub      *live.Hub

	UploadLimiter *middleware.RateLimiter
	AuthLimiter   *middleware.RateLimiter
	CORSOrigins   []string
	Checks        map[string]api.Pinger
	Log           logrus.FieldLogger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	log := deps.Log
	router := gin.New()

	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.RequestLogger(log))
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(deps.CORSOrigins)))
	}

	health := api.NewHealthHandler(Version, deps.Checks)
	health.RegisterRoutes(router)

	// API v1 routes
	v1 := router.Group("/api/v1")
	health.RegisterRoutes(v1)

	authHandler := api.NewAuthHandler(deps.Auth, deps.Profiles, log)
	public := v1.Group("")
	if deps.AuthLimiter != nil {
		public.Use(deps.AuthLimiter.RateLimitMiddleware())
	}
	authHandler.RegisterRoutes(public)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))
	{
		protected.GET("/auth/me", authHandler.Me)

		api.NewProfileHandler(deps.Profiles, log).RegisterRoutes(protected)
		api.NewTaskHandler(deps.Tasks, log).RegisterRoutes(protected)
		api.NewRoutineHandler(deps.Routines, log).RegisterRoutes(protected)
		api.NewMenuHandler(deps.Menu, log).RegisterRoutes(protected)
		api.NewMealHandler(deps.Meals, log).RegisterRoutes(protected)
		api.NewShoppingHandler(deps.Shopping, log).RegisterRoutes(protected)

		var limit gin.HandlerFunc
		if deps.UploadLimiter != nil {
			limit = deps.UploadLimiter.RateLimitMiddleware()
		}
		api.NewUploadHandler(deps.Uploads, limit, log).RegisterRoutes(protected)

		if deps.Hub != nil {
			api.NewLiveHandler(deps.Hub, deps.CORSOrigins, log).RegisterRoutes(protected)
		}
	}

	return router
}
