package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIVersion is reported by the root endpoint.
const APIVersion = "1.0.0"

// Root handles GET /
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "LawGPT API is running",
		"version": APIVersion,
	})
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
