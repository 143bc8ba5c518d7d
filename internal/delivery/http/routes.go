package http

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/foodlens/backend/config"
)

// SetupRouter creates and configures the Gin router. assets holds the
// browser client (index.html, app.js, styles.css).
func SetupRouter(cfg *config.Config, handler *Handler, assets fs.FS, log logrus.FieldLogger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if cfg.Server.MaxUploadMB > 0 {
		router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	}

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	// Browser client
	router.GET("/", func(c *gin.Context) {
		page, err := fs.ReadFile(assets, "index.html")
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
	router.StaticFS("/static", http.FS(assets))

	// Phase 1: upload and analyze, returns a handle
	router.POST("/analyze", RateLimitMiddleware(cfg.RateLimit.PerIP), handler.Analyze)
	// Phase 2: resolve the handle
	router.GET("/processed/:file", handler.ServeProcessed)

	entries := router.Group("/entries")
	{
		entries.GET("", handler.ListEntries)
		entries.GET("/:index", handler.GetEntry)
	}

	return router
}
