package websocket

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quayside-ops/panel-backend-go/internal/panel"
)

// EventForwarder polls the panel API for new events and broadcasts them to
// connected dashboard sessions.
type EventForwarder struct {
	client   *panel.Client
	hub      *Hub
	logger   *logrus.Logger
	interval time.Duration

	lastSeen time.Time
}

// NewEventForwarder creates a forwarder polling every interval.
func NewEventForwarder(client *panel.Client, hub *Hub, interval time.Duration, logger *logrus.Logger) *EventForwarder {
	return &EventForwarder{
		client:   client,
		hub:      hub,
		logger:   logger,
		interval: interval,
		lastSeen: time.Now().UTC(),
	}
}

// Run polls until ctx is cancelled.
func (f *EventForwarder) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.poll(ctx)
		}
	}
}

func (f *EventForwarder) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, f.interval)
	defer cancel()

	events, err := f.client.ListEvents(ctx, f.lastSeen)
	if err != nil {
		if f.logger != nil {
			f.logger.WithError(err).Warn("Panel event poll failed")
		}
		return
	}

	for _, ev := range events {
		f.hub.Broadcast("panel_event", ev)
		if ev.CreatedAt.After(f.lastSeen) {
			f.lastSeen = ev.CreatedAt
		}
	}
}
