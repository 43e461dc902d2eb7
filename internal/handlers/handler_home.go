package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerHomeRoutes registers the root informational route.
func registerHomeRoutes(r *gin.Engine) {
	r.GET("/", homeHandler)
}

// homeHandler godoc
// @Summary API root
// @Description Returns the service name and a pointer to the API base path
// @Tags home
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func homeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "gl_backend",
		"apiBase": "/api/v1",
	})
}
