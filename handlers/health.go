package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "medipal-backend"

// Health reports service identity and current server time. No
// authentication required.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": serviceName,
		"now":     time.Now().UTC().Format(time.RFC3339),
	})
}
