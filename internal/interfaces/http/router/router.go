// Package router wires the HTTP handlers and middleware onto a gin engine.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/aewis/internal/config"
	"github.com/turtacn/aewis/internal/interfaces/http/handlers"
	"github.com/turtacn/aewis/internal/interfaces/http/middleware"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

// Middlewares are the optional cross-cutting handlers. Nil entries are skipped.
type Middlewares struct {
	Observability gin.HandlerFunc
	RateLimit     gin.HandlerFunc
	Idempotency   gin.HandlerFunc
}

// Router HTTP 路由器
type Router struct {
	engine              *gin.Engine
	config              *config.Config
	logger              logger.Logger
	healthHandler       *handlers.HealthHandler
	riskHandler         *handlers.RiskHandler
	interventionHandler *handlers.InterventionHandler
	middlewares         Middlewares
	server              *http.Server
}

// NewRouter 创建路由器并注册全部路由
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	riskHandler *handlers.RiskHandler,
	interventionHandler *handlers.InterventionHandler,
	mw Middlewares,
) *Router {
	// 设置 Gin 模式
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:              gin.New(),
		config:              cfg,
		logger:              log,
		healthHandler:       healthHandler,
		riskHandler:         riskHandler,
		interventionHandler: interventionHandler,
		middlewares:         mw,
	}
	r.setupRoutes()
	return r
}

func use(group gin.IRoutes, handlers ...gin.HandlerFunc) {
	for _, h := range handlers {
		if h != nil {
			group.Use(h)
		}
	}
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 全局中间件
	r.engine.Use(
		middleware.RecoveryMiddleware(r.logger),
		middleware.RequestIDMiddleware(),
	)
	use(r.engine, r.middlewares.Observability)
	r.engine.Use(middleware.LoggingMiddleware(r.logger))

	// CORS 配置
	corsConfig := cors.Config{
		AllowOrigins:     r.config.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", constants.HeaderRequestID, constants.HeaderIdempotencyKey},
		ExposeHeaders:    []string{constants.HeaderRequestID, constants.HeaderRateLimitLimit, constants.HeaderRateLimitRemaining},
		AllowCredentials: true,
		AllowWildcard:    true, // e.g. https://*.streamlit.app
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.engine.Use(cors.New(corsConfig))

	// 健康检查路由
	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/health/live", r.healthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.healthHandler.ReadinessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pprof 性能分析（仅在非生产环境）
	if r.config.Monitoring.PprofEnabled {
		pprof.Register(r.engine)
	}

	// API 路由组
	api := r.engine.Group(r.config.Server.APIPrefix)
	use(api, r.middlewares.RateLimit)
	{
		api.POST("/upload-csv", r.riskHandler.UploadCSV)
		api.GET("/risk-stats/:college_id", r.riskHandler.GetRiskStats)
		api.GET("/teacher/:teacher_id/students", r.riskHandler.GetTeacherStudents)

		interventions := api.Group("/interventions")
		{
			if r.middlewares.Idempotency != nil {
				interventions.POST("", r.middlewares.Idempotency, r.interventionHandler.RecordIntervention)
			} else {
				interventions.POST("", r.interventionHandler.RecordIntervention)
			}
			interventions.GET("/:college_id", r.interventionHandler.ListInterventions)
		}
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errors.ToErrorResponse(errors.ErrNotFound))
	})
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
func (r *Router) Start() error {
	addr := r.config.Server.Addr()
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    r.config.Server.ReadTimeout,
		WriteTimeout:   r.config.Server.WriteTimeout,
		IdleTimeout:    r.config.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	r.logger.Info(context.Background(), "Starting HTTP server", logger.String("address", addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}

	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

// Engine exposes the gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
