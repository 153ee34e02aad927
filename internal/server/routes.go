package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmurray2011/leaf/internal/logging"
	slogGin "github.com/samber/slog-gin"
)

func setupRoutes(h *handler, log logging.Logger) http.Handler {
	r := gin.New()

	httpLogger := log.Slog().WithGroup("http")
	r.Use(slogGin.NewWithConfig(httpLogger, slogGin.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
	}))
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.BestSpeed))
	r.Use(cors.Default())

	r.GET("/healthz", healthHandler)

	api := r.Group("/api")
	{
		api.GET("/files", h.files)
		api.GET("/logs", h.logs)
		api.GET("/logs/*file", h.logs)
		api.GET("/tail", h.tail)
		api.GET("/tail/*file", h.tail)
	}

	return r
}

func healthHandler(c *gin.Context) {
	c.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
