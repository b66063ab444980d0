package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quayside-ops/panel-backend-go/pkg/utils"
)

var startTime = time.Now()

// Health returns service health status
func (h *Handlers) Health(c *gin.Context) {
	utils.SendSuccess(c, gin.H{
		"status":    "healthy",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
