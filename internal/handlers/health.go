package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHealth handles GET /health.
func (a *APIStore) GetHealth(c *gin.Context) {
	if !a.Healthy() || !a.catalog.Healthy(c.Request.Context()) {
		c.String(http.StatusServiceUnavailable, "service is unavailable")
		return
	}

	c.String(http.StatusOK, "health check successful")
}
