// Package api HTTP 路由與中間件組裝
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/api/handlers/health"
	"meal-planner/internal/api/handlers/mealplan"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

// Deps 路由需要的服務
type Deps struct {
	Planner mealplan.Service
	DB      health.Pinger
	Queue   health.QueueReporter
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Success: false,
			Code:    common.ErrCodeNotFound,
			Error:   "Route not found",
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, common.ErrorResponse{
			Success: false,
			Code:    common.ErrCodeMethodNotAllowed,
			Error:   "Method not allowed",
		})
	})

	// 基礎中間件，requestid 需在 RequestContext 與 Logger 之前
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.RequestContext())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	health.NewHandler(cfg.App.Version, deps.DB, deps.Queue).Register(router)

	api := router.Group("/api/v1")
	api.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.NewDeduplicator(cfg.DedupWindow).Middleware())

	mealplan.NewHandler(deps.Planner).Register(api)

	common.LogInfo("Router setup completed",
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
	)
	return router
}
