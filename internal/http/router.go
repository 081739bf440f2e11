package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/InvoiceDrafter/internal/http/api/front"
	"github.com/router-for-me/InvoiceDrafter/internal/http/api/front/handlers"
)

// NewHandler builds the in-process bridge the desktop shell mounts in its asset handler.
// It opens no listener of its own.
func NewHandler(pipeline handlers.Pipeline) http.Handler {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(RecoveryMiddleware(), RequestLogMiddleware(), JSONBodyMiddleware())
	front.RegisterFrontRoutes(r, pipeline)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}
