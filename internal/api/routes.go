package api

import (
	"net/http"

	"github.com/brunogcp/SafeGuard/internal/api/handlers"
	"github.com/brunogcp/SafeGuard/internal/api/middleware"
	"github.com/brunogcp/SafeGuard/internal/services"
	"github.com/brunogcp/SafeGuard/internal/token"
	"github.com/brunogcp/SafeGuard/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	engine         *gin.Engine
	logger         *zap.Logger
	metrics        *metrics.MetricsCollector
	authHandler    *handlers.AuthHandler
	docHandler     *handlers.DocumentHandler
	authMiddleware *middleware.AuthMiddleware
	reqMiddleware  *middleware.RequestMiddleware
}

func NewRouter(
	logger *zap.Logger,
	metricsCollector *metrics.MetricsCollector,
	authService *services.AuthService,
	documentService *services.DocumentService,
	issuer *token.Issuer,
	maxFileSize int64,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	authMiddleware := middleware.NewAuthMiddleware(issuer)

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())

	return &Router{
		engine:         engine,
		logger:         logger,
		metrics:        metricsCollector,
		authHandler:    handlers.NewAuthHandler(authService, logger),
		docHandler:     handlers.NewDocumentHandler(documentService, maxFileSize, logger),
		authMiddleware: authMiddleware,
		reqMiddleware:  reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "safeguard"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
			"sizes":     r.metrics.GetSizes(),
		})
	})

	apiGroup := r.engine.Group("/api")

	auth := apiGroup.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/verifyOtp", r.authHandler.VerifyOtp)
	}

	documents := apiGroup.Group("/documents")
	documents.Use(r.authMiddleware.RequireAuth())
	{
		documents.POST("", r.docHandler.Upload)
		documents.GET("", r.docHandler.List)
		documents.GET("/:id", r.docHandler.Download)
		documents.PUT("/:id", r.docHandler.Update)
		documents.DELETE("/:id", r.docHandler.Delete)
		documents.POST("/share", r.docHandler.CreateShare)
		documents.DELETE("/share", r.docHandler.DeleteShare)
		documents.POST("/sign", r.docHandler.Sign)
		documents.POST("/sign/verify", r.docHandler.VerifySign)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
