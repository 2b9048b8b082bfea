package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arogyanet/hospital-registry/config"
	"github.com/arogyanet/hospital-registry/internal/middleware"
	"github.com/arogyanet/hospital-registry/internal/service"
	"github.com/arogyanet/hospital-registry/pkg/auth"
	"github.com/arogyanet/hospital-registry/pkg/metrics"
)

// NewRouter assembles the middleware chain and routes. The chain order
// mirrors the request lifecycle: recovery, request id, security headers,
// CORS, rate limit, logging, metrics, then routing.
func NewRouter(
	cfg *config.Config,
	svc *service.HospitalService,
	authManager *auth.Manager,
	collector *metrics.Collector,
	log *zap.Logger,
) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RateLimit(cfg.RateLimit))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(collector))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	handler := NewHospitalHandler(svc, collector, log)

	hospitals := r.Group("/api/hospitals")
	hospitals.Use(middleware.Auth(authManager, log))
	{
		hospitals.POST("", handler.Create)
		hospitals.GET("/:id", handler.Get)
		hospitals.PATCH("/:id", handler.Update)
		hospitals.DELETE("/:id", handler.Delete)
	}

	return r
}
