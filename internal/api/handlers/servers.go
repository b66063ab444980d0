package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/quayside-ops/panel-backend-go/internal/panel"
	apperrors "github.com/quayside-ops/panel-backend-go/pkg/errors"
	"github.com/quayside-ops/panel-backend-go/pkg/utils"
)

// GetAccount returns the authenticated user's panel account
func (h *Handlers) GetAccount(c *gin.Context) {
	account, err := h.panel.GetAccount(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.sendPanelError(c, err)
		return
	}
	utils.SendSuccess(c, account)
}

// ListServers returns the servers visible to the authenticated user
func (h *Handlers) ListServers(c *gin.Context) {
	servers, err := h.panel.ListServers(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.sendPanelError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"servers": servers, "count": len(servers)})
}

// GetServer returns a single server by ID
func (h *Handlers) GetServer(c *gin.Context) {
	server, err := h.panel.GetServer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendPanelError(c, err)
		return
	}
	utils.SendSuccess(c, server)
}

// sendPanelError maps upstream failures to client responses. Panel API
// statuses pass through; transport failures become a 502.
func (h *Handlers) sendPanelError(c *gin.Context, err error) {
	var apiErr *panel.APIError
	if errors.As(err, &apiErr) {
		utils.SendError(c, apiErr.Status, apiErr.Message)
		return
	}
	h.log.WithError(err).Error("Panel request failed")
	utils.SendError(c, apperrors.ErrUpstream.Code, apperrors.ErrUpstream.Message)
}
