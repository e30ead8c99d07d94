// Package api exposes the scan service over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wcag-scan/backend/analyzer"
	"github.com/wcag-scan/backend/logging"
	"github.com/wcag-scan/backend/metrics"
	"github.com/wcag-scan/backend/middleware"
)

// Deps are the collaborators the router needs. Stats, Metrics and
// Gatherer may be nil.
type Deps struct {
	Analyzer     *analyzer.Analyzer
	Stats        *logging.Statistics
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Limiter      *middleware.RateLimiter
	Logger       *slog.Logger
	MaxBodyBytes int64
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 5 << 20
	}
	h := &handler{
		analyzer:     d.Analyzer,
		stats:        d.Stats,
		logger:       d.Logger,
		maxBodyBytes: d.MaxBodyBytes,
	}

	r := gin.New()
	r.Use(middleware.ErrorHandler(d.Logger))
	r.Use(middleware.CORS())
	if d.Limiter != nil {
		r.Use(d.Limiter.RateLimit())
	}
	r.Use(middleware.Stats(d.Stats, d.Metrics))

	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/rules", h.rules)
		api.POST("/scan", h.scanURL)
		api.POST("/scan/html", h.scanHTML)
		api.POST("/scan/snapshot", h.scanSnapshot)
		api.GET("/statistics", h.statistics)
		api.DELETE("/cache", h.clearCache)
	}

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	} else {
		r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	}
	return r
}
