package api

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

// setupWeb serves the upload page, its static assets and the endpoint it posts to
func setupWeb(r *gin.Engine, config *Config) {
	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	r.SetHTMLTemplate(template.Must(template.ParseFS(webFS, "web/templates/*.html")))
	r.StaticFS("/static", http.FS(static))

	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"title":         "PDF Watermark Remover",
			"maxFileSizeMB": config.MaxFileSize >> 20,
			"sensitivity":   config.Options.ThresholdRatio,
		})
	})
	r.POST("/process", func(c *gin.Context) { HandleProcess(c, config) })
}
