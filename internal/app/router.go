package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	_ "github.com/noah-isme/training-import/api/swagger"
	"github.com/noah-isme/training-import/internal/handler"
	"github.com/noah-isme/training-import/internal/middleware"
	"github.com/noah-isme/training-import/pkg/config"
	"github.com/noah-isme/training-import/pkg/logger"
	corsmiddleware "github.com/noah-isme/training-import/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/training-import/pkg/middleware/requestid"
)

// Router builds the HTTP surface. The returned stop func halts background
// workers owned by the router.
func (a *App) Router() (*gin.Engine, func()) {
	cfg := a.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.Metrics))

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.Import.RateLimit),
		Burst: cfg.Import.RateBurst,
	}, a.Logger)

	metricsHandler := handler.NewMetricsHandler(a.Metrics)
	sessionHandler := handler.NewSessionHandler(a.Sessions)
	importHandler := handler.NewImportHandler(a.Imports, a.Exports, a.Uploads, cfg.Import.MaxUploadSize, a.Logger)
	scheduleHandler := handler.NewScheduleHandler(a.Schedules, a.Uploads, cfg.Import.MaxUploadSize, a.Logger)
	statsHandler := handler.NewStatsHandler(a.Stats, a.Exports)

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", metricsHandler.Health)
	api.GET("/metrics/summary", metricsHandler.Summary)
	api.GET("/sessions", sessionHandler.List)
	api.GET("/sessions/:id", sessionHandler.Get)
	api.GET("/stats/years/:year", statsHandler.Year)

	secured := api.Group("")
	secured.Use(middleware.JWT(a.Tokens))
	secured.POST("/sessions", sessionHandler.Create)

	uploads := secured.Group("")
	uploads.Use(limiter.Middleware())
	uploads.POST("/sessions/:id/imports", importHandler.Create)
	uploads.POST("/schedules/extract", scheduleHandler.Extract)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, limiter.Stop
}
