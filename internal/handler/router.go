package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"isthisai-detection/internal/detector"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RouterConfig selects optional routes
type RouterConfig struct {
	MetricsEnabled bool
	MetricsPath    string
	MetricsHandler http.Handler
}

// NewRouter wires the detection routes and middleware onto a gin engine
func NewRouter(handlers *DetectionHandler, cfg RouterConfig, logger *logrus.Logger) *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(requestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", handlers.HealthCheck)

	v1 := router.Group("/v1")
	{
		v1.POST("/detect/text", handlers.DetectText)
		v1.POST("/detect/image", handlers.DetectImage)
		v1.POST("/detect/image-url", handlers.DetectImageURL)
		v1.POST("/detect/batch", handlers.DetectBatch)
		v1.POST("/report", handlers.Report)
		v1.GET("/metrics", handlers.GetMetrics)
	}

	if cfg.MetricsEnabled && cfg.MetricsHandler != nil {
		router.GET(cfg.MetricsPath, gin.WrapH(cfg.MetricsHandler))
	}

	return router
}

// requestIDMiddleware reuses the caller's X-Request-ID or generates one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Request = c.Request.WithContext(detector.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": detector.RequestIDFromContext(c.Request.Context()),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}).Info("HTTP request")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
