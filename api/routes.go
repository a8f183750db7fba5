package api

import (
	"net/http"

	"pdf_watermark/pdf"

	"github.com/gin-gonic/gin"
)

// Config holds what the handlers need
type Config struct {
	MaxFileSize int64
	TempDir     string
	// Options are the detection defaults, overridden per request by form fields
	Options pdf.Options
	Cleaner *pdf.Cleaner
}

// NewRouter builds a gin engine with request logging, recovery and all routes
func NewRouter(config *Config) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), Recovery())
	r.MaxMultipartMemory = config.MaxFileSize
	SetupRoutes(r, config)
	return r
}

func SetupRoutes(r *gin.Engine, config *Config) {
	apiGroup := r.Group("/api/pdf")
	{
		apiGroup.POST("/analyze-watermarks", func(c *gin.Context) { HandleAnalyzeWatermarks(c, config) })
		apiGroup.POST("/remove-watermarks", func(c *gin.Context) { HandleRemoveWatermarks(c, config) })
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "pdf_watermark",
		})
	})

	setupWeb(r, config)
}
