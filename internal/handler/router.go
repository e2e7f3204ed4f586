package handler

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"standfinder/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// RouterOptions configures NewRouter
type RouterOptions struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // nil disables /metrics
	Build    BuildInfo
	UI       fs.FS // optional frontend build served for non-API paths

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// NewRouter wires the stand endpoints, health checks and metrics into a gin
// engine
func NewRouter(h *StandHandler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger, opts.Metrics))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = orDefault(opts.AllowedOrigins, []string{"*"})
	corsConfig.AllowMethods = orDefault(opts.AllowedMethods, []string{"GET", "POST", "DELETE", "OPTIONS"})
	corsConfig.AllowHeaders = orDefault(opts.AllowedHeaders, []string{"Content-Type", "Authorization"})
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "standfinder",
			"sessions":   h.sessions.Len(),
			"stands":     len(h.sessions.Base()),
			"version":    opts.Build.Version,
			"build_time": opts.Build.BuildTime,
			"git_commit": opts.Build.GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    opts.Build.Version,
			"build_time": opts.Build.BuildTime,
			"git_commit": opts.Build.GitCommit,
		})
	})

	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Suggestions
		apiV1.GET("/locations", h.Locations)
		apiV1.GET("/cities", h.Cities)

		// Sessions
		apiV1.POST("/sessions", h.CreateSession)
		apiV1.DELETE("/sessions/:id", h.DeleteSession)
		apiV1.GET("/sessions/:id/stands", h.GetStands)
		apiV1.GET("/sessions/:id/stream", h.Stream)

		// Store operations
		apiV1.POST("/sessions/:id/search", h.Search)
		apiV1.POST("/sessions/:id/sort", h.Sort)
		apiV1.POST("/sessions/:id/filters", h.Filter)
		apiV1.DELETE("/sessions/:id/filters", h.ResetFilters)
	}

	router.NoRoute(noRoute(opts.UI))

	return router
}

// SplitList splits a comma separated setting, dropping empty items
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
