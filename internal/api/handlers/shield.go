package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/quayside-ops/panel-backend-go/pkg/utils"
)

// ShieldStats reports traffic-shield tracking counts. Admin only.
func (h *Handlers) ShieldStats(c *gin.Context) {
	utils.SendSuccess(c, gin.H{
		"shield":     h.guard.Stats(),
		"websockets": h.wsHub.Stats(),
	})
}
