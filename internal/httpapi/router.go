package httpapi

import (
	"net/http"

	"inventoryreservation/internal/config"
	"inventoryreservation/internal/platform/observability"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// NewRouter registers the read-only inventory routes.
func NewRouter(h *InventoryHandler, logger observability.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/health", h.HealthCheck)
	router.GET("/inventory", h.ListInventory)
	return router
}

// NewHTTPHandler wraps router so every request gets a server span and HTTP metrics.
func NewHTTPHandler(router *gin.Engine) http.Handler {
	return otelhttp.NewHandler(router, "http-server",
		otelhttp.WithMeterProvider(otel.GetMeterProvider()),
		otelhttp.WithTracerProvider(otel.GetTracerProvider()),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// NewServer builds the HTTP server for addr.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  config.HTTPReadTimeout,
		WriteTimeout: config.HTTPWriteTimeout,
	}
}

func requestLogger(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("HTTP request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
