// Package httpapi wires the HTTP transport (Gin) to the hotel service,
// middleware and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers and rate limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/tbourn/go-hotel-search/docs"
	"github.com/tbourn/go-hotel-search/internal/config"
	"github.com/tbourn/go-hotel-search/internal/http/handlers"
	"github.com/tbourn/go-hotel-search/internal/http/middleware"
)

const (
	// maxBodyBytes caps request bodies; the API is read-only.
	maxBodyBytes = 64 << 10
	// slowRequest marks access log lines of requests slower than this.
	slowRequest = 5 * time.Second
)

// Routes that bypass the inbound rate limiter.
var unlimitedRoutes = []string{"/health", "/healthz", "/metrics"}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the hotel API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID and request-scoped logger
//  3. RedactingLogger: access log with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip (except /metrics)
//  8. CORS, then security headers
//  9. Rate limiter per client IP, after CORS so 429s stay readable
func RegisterRoutes(r *gin.Engine, svc handlers.HotelService, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID(), middleware.RequestLogger(log.Logger))
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders:   []string{"X-API-Key"},
		SlowThreshold: slowRequest,
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(corsFor(cfg.CORS))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP(), unlimitedRoutes...)
	r.Use(rl.Handler())

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	health := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	r.GET("/health", health)
	r.GET("/healthz", health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svc)
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/hotels/search", h.SearchHotels)
		api.GET("/hotels/:id", h.GetHotel)
		api.GET("/hotels/:id/photos", h.GetHotelPhotos)
		api.GET("/locations/autocomplete", h.AutocompleteLocations)
		api.GET("/cache/stats", h.CacheStats)
	}
}

// corsFor builds the CORS middleware. With no configured origins every
// origin is allowed without credentials.
func corsFor(c config.CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", "Content-Type", "If-None-Match", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Retry-After", "ETag", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cors.New(cc)
}

// limitBody caps the request body size using http.MaxBytesReader.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
