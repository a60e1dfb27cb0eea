package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dbarry-dev/stationtrack/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. The
// templates glob may be empty when only the JSON surface is needed, as in
// tests.
func New(handler *handlers.DashboardHandler, logger *zap.Logger, templatesGlob string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	if templatesGlob != "" {
		r.LoadHTMLGlob(templatesGlob)
		r.GET("/", handler.Index)
		r.POST("/", handler.Index)
	}

	r.GET("/api/items", handler.Items)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
