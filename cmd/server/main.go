package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/quayside-ops/panel-backend-go/internal/api"
	"github.com/quayside-ops/panel-backend-go/internal/config"
	"github.com/quayside-ops/panel-backend-go/internal/core/shield"
	"github.com/quayside-ops/panel-backend-go/internal/panel"
	"github.com/quayside-ops/panel-backend-go/internal/websocket"
	"github.com/quayside-ops/panel-backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Logging.Level)

	// Panel API client
	panelClient := panel.NewClient(
		cfg.Panel.URL,
		cfg.Panel.APIKey,
		time.Duration(cfg.Panel.RequestTimeout)*time.Second,
		log,
	)

	// Traffic shield
	shieldCfg := shield.Config{
		RateWindow:         cfg.Shield.RateWindow(),
		RateMax:            cfg.Shield.RateMax,
		RateSuspicious:     cfg.Shield.RateSuspiciousMax,
		RateAdmin:          cfg.Shield.RateAdminMax,
		SuspicionCutoff:    cfg.Shield.SuspicionCutoff,
		BurstWindow:        cfg.Shield.BurstWindow(),
		MaxBurst:           cfg.Shield.MaxBurst,
		BlacklistTTL:       cfg.Shield.BlacklistTTL(),
		SuspicionTTL:       cfg.Shield.SuspicionTTL(),
		BanThreshold:       cfg.Shield.BanThreshold,
		SpeedWindow:        cfg.Shield.SpeedWindow(),
		SpeedBaseThreshold: cfg.Shield.SpeedBaseThreshold,
		SpeedMinThreshold:  cfg.Shield.SpeedMinThreshold,
		SpeedMaxDelay:      cfg.Shield.SpeedMaxDelay(),
		MaxTrackedClients:  cfg.Shield.MaxTrackedClients,
	}
	guard := shield.New(shieldCfg, log, shield.NewMetrics(prometheus.DefaultRegisterer))

	// Create WebSocket hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Forward panel events to connected dashboards
	forwarderCtx, stopForwarder := context.WithCancel(context.Background())
	defer stopForwarder()
	forwarder := websocket.NewEventForwarder(
		panelClient,
		wsHub,
		time.Duration(cfg.Panel.EventPollSecs)*time.Second,
		log,
	)
	go forwarder.Run(forwarderCtx)

	// Minutely sweep of expired shield entries
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("* * * * *", func() {
		removed := guard.PurgeExpired()
		if removed > 0 {
			log.WithField("removed", removed).Debug("Shield sweep completed")
		}
	}); err != nil {
		log.Fatal("Failed to schedule shield sweep:", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize router
	router := api.NewRouter(cfg, panelClient, guard, wsHub, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Infof("Starting panel backend on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	stopForwarder()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Info("Server exited")
}
