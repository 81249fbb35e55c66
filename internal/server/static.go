package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// mountStatic serves the built dashboard SPA. Unknown non-API paths fall
// back to index.html so client-side routes (/workflow, /costing) resolve.
func (s *Server) mountStatic() {
	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return
	}

	info, err := os.Stat(s.staticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", zap.String("path", s.staticDir), zap.Error(err))
		return
	}

	indexPath := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", zap.String("path", indexPath), zap.Error(err))
	} else {
		s.engine.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})
		s.engine.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
				return
			}
			c.File(indexPath)
		})
	}

	for _, asset := range []string{"assets", "images"} {
		dir := filepath.Join(s.staticDir, asset)
		if _, err := os.Stat(dir); err == nil {
			s.engine.StaticFS("/"+asset, gin.Dir(dir, false))
		}
	}

	for _, file := range []string{"favicon.ico", "robots.txt"} {
		path := filepath.Join(s.staticDir, file)
		if _, err := os.Stat(path); err == nil {
			s.engine.StaticFile("/"+file, path)
		}
	}
}
