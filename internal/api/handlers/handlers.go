package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/quayside-ops/panel-backend-go/internal/config"
	"github.com/quayside-ops/panel-backend-go/internal/core/shield"
	"github.com/quayside-ops/panel-backend-go/internal/panel"
	"github.com/quayside-ops/panel-backend-go/internal/websocket"
)

// Handlers contains the shared dependencies for all API handlers
type Handlers struct {
	cfg   *config.Config
	panel *panel.Client
	guard *shield.Shield
	wsHub *websocket.Hub
	log   *logrus.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(cfg *config.Config, panelClient *panel.Client, guard *shield.Shield, wsHub *websocket.Hub, logger *logrus.Logger) *Handlers {
	return &Handlers{
		cfg:   cfg,
		panel: panelClient,
		guard: guard,
		wsHub: wsHub,
		log:   logger,
	}
}
