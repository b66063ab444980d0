package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quayside-ops/panel-backend-go/pkg/utils"
)

// ListEvents returns recent panel events, optionally filtered by a
// ?since=RFC3339 timestamp. Defaults to the last hour.
func (h *Handlers) ListEvents(c *gin.Context) {
	since := time.Now().Add(-time.Hour)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.SendError(c, http.StatusBadRequest, "Invalid since timestamp, expected RFC3339")
			return
		}
		since = parsed
	}

	events, err := h.panel.ListEvents(c.Request.Context(), since)
	if err != nil {
		h.sendPanelError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"events": events, "count": len(events)})
}
